package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a deadline or profile id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write loses a race, e.g. two concurrent
	// first sessions trying to seed the same owner.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports a rejected field with a caller-facing reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
