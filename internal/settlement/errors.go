package settlement

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNonPositiveAmount  = errors.New("payment amount must be greater than zero")
	ErrUnknownMethod      = errors.New("unknown payment method")
	ErrSubCentAmount      = errors.New("payment amount must not have more than 2 decimal places")
	ErrExceedsRemaining   = errors.New("payment amount exceeds remaining balance")
	ErrInvoiceAlreadyPaid = errors.New("invoice is already paid")
)

// ValidationError reports a payment request the caller should correct
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a *ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
