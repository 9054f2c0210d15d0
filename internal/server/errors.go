// Package server provides the HTTP API for profiles, AI enrichment and field filling.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/form-autofill/internal/autofill"
	"github.com/jonathan/form-autofill/internal/dom"
	"github.com/jonathan/form-autofill/internal/enrich"
	"github.com/jonathan/form-autofill/internal/schemas"
	"github.com/jonathan/form-autofill/internal/store"
	"github.com/jonathan/form-autofill/internal/transport"
)

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		validationErr  *ErrValidation
		schemaErr      *schemas.ValidationError
		parseErr       *dom.ParseError
		credentialsErr *ErrInvalidCredentials
		authErr        *enrich.AuthError
		collabErr      *enrich.CollaboratorError
		unavailableErr *transport.UnavailableError
		requestErr     *transport.RequestError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &schemaErr), errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.As(err, &credentialsErr), errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrEmailTaken):
		return http.StatusConflict
	case errors.As(err, &collabErr):
		return http.StatusBadGateway
	case errors.Is(err, autofill.ErrAINotConfigured), errors.As(err, &unavailableErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &requestErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
