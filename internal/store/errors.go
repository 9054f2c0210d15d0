package store

import (
	"errors"
	"fmt"
)

// ErrEmailTaken is returned by CreateUser for a duplicate address.
var ErrEmailTaken = errors.New("email already registered")

// CorruptProfileError reports a stored profile that no longer decodes.
type CorruptProfileError struct {
	Key   string
	Cause error
}

func (e *CorruptProfileError) Error() string {
	return fmt.Sprintf("stored profile %s is corrupt: %v", e.Key, e.Cause)
}

func (e *CorruptProfileError) Unwrap() error {
	return e.Cause
}
