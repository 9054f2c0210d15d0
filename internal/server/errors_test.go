package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/form-autofill/internal/autofill"
	"github.com/jonathan/form-autofill/internal/enrich"
	"github.com/jonathan/form-autofill/internal/schemas"
	"github.com/jonathan/form-autofill/internal/store"
	"github.com/jonathan/form-autofill/internal/transport"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "email", Message: "required"}, http.StatusBadRequest},
		{"schema", &schemas.ValidationError{}, http.StatusBadRequest},
		{"credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"missing identity", &enrich.AuthError{}, http.StatusUnauthorized},
		{"wrapped identity", fmt.Errorf("fill: %w", &enrich.AuthError{}), http.StatusUnauthorized},
		{"email taken", fmt.Errorf("register: %w", store.ErrEmailTaken), http.StatusConflict},
		{"collaborator", &enrich.CollaboratorError{Message: "boom"}, http.StatusBadGateway},
		{"ai not configured", autofill.ErrAINotConfigured, http.StatusServiceUnavailable},
		{"transport", &transport.UnavailableError{Action: transport.ActionPing}, http.StatusServiceUnavailable},
		{"receiver", &transport.RequestError{Action: transport.ActionFillFields, Message: "x"}, http.StatusUnprocessableEntity},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrValidation_Error(t *testing.T) {
	assert.Equal(t, "validation error: email - required", (&ErrValidation{Field: "email", Message: "required"}).Error())
	assert.Equal(t, "validation error: invalid JSON", (&ErrValidation{Message: "invalid JSON"}).Error())
}
