package payment

import (
	"errors"
	"fmt"
)

// ValidationError marks an illegal state transition or bad input. It is
// surfaced to callers as-is and must never be re-wrapped into a storage or
// internal error on its way up.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError anywhere in
// its chain.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
