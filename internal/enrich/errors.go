package enrich

import (
	"errors"
	"fmt"
)

// AuthError means the collaborator was called without a valid caller identity.
// It is surfaced to the caller and never retried or recovered by fallback.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication required"
	}
	return "authentication required: " + e.Message
}

// CollaboratorError wraps any other failure of the collaborator call:
// transport, service error or an unusable payload.
type CollaboratorError struct {
	Message string
	Cause   error
}

func (e *CollaboratorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CollaboratorError) Unwrap() error {
	return e.Cause
}

// ErrNoResumeText is returned when a resume file yields no text to extract from.
var ErrNoResumeText = errors.New("could not extract text from resume; please ensure the file is readable")

// IsAuthError reports whether err is, or wraps, an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
