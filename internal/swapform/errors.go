package swapform

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmitInProgress is returned for any event received while a swap is
	// being executed.
	ErrSubmitInProgress = errors.New("swap submission in progress")

	// ErrInvalidToken is returned when a token symbol is empty.
	ErrInvalidToken = errors.New("invalid token symbol")

	// ErrInvalidField is returned when an event names neither side.
	ErrInvalidField = errors.New("invalid field")

	// ErrFormNotFound is returned by Registry lookups.
	ErrFormNotFound = errors.New("form not found")
)

// ValidationError is a field-level rejection. The form state is unchanged
// when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
