package transport

import (
	"errors"
	"fmt"
)

// ErrReceiverAbsent is returned by Tab.Send when no receiver is listening.
// It means "not ready", as opposed to a receiver answering unsuccessfully.
var ErrReceiverAbsent = errors.New("receiver not present in page")

// UnavailableError means the receiver could not be reached, even after injection.
type UnavailableError struct {
	Action string
	Cause  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("page receiver unavailable for %s: %v", e.Action, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// RequestError is an unsuccessful reply from a reachable receiver.
type RequestError struct {
	Action  string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Action, e.Message)
}
