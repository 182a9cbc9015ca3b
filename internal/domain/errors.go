package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCardNotFound is returned when a card definition does not exist
	ErrCardNotFound = errors.New("card not found")

	// ErrOwnershipNotFound is returned when an ownership record does not exist
	ErrOwnershipNotFound = errors.New("ownership record not found")

	// ErrEditionExhausted is returned when every numbered edition of a
	// capped card has already been minted. Terminal; retrying cannot succeed.
	ErrEditionExhausted = errors.New("all editions have been minted")

	// ErrEditionExpired is returned when minting a timed edition past its
	// expiry. Terminal.
	ErrEditionExpired = errors.New("timed edition has expired")

	// ErrNotForSale is returned when purchasing a record that is not
	// listed, typically because a concurrent buyer won the race or the
	// seller unlisted it. Callers should re-fetch before retrying.
	ErrNotForSale = errors.New("card is not for sale")

	// ErrPolicyViolation is the base error for business-rule breaches
	ErrPolicyViolation = errors.New("policy violation")

	// ErrCreatorCopyNotTradable is returned when listing a creator copy
	ErrCreatorCopyNotTradable = fmt.Errorf("%w: creator copies cannot be sold", ErrPolicyViolation)

	// ErrUnlimitedNotTradable is returned when listing a copy of an
	// unlimited-edition card
	ErrUnlimitedNotTradable = fmt.Errorf("%w: unlimited edition cards cannot be sold", ErrPolicyViolation)

	// ErrStorageConflict is returned after a transaction exhausted its
	// conflict retries. Transient; the operation left no partial state.
	ErrStorageConflict = errors.New("storage conflict")
)

// ValidationError reports bad or missing input on a named field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PaymentError wraps a failure propagated from the payment collaborator.
// The surrounding transaction is rolled back, so wallet balances and
// ownership state are unchanged when this is returned.
type PaymentError struct {
	Reason string
	Err    error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("payment failed: %s", e.Reason)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a payment error
func NewPaymentError(reason string, err error) *PaymentError {
	return &PaymentError{Reason: reason, Err: err}
}

// IsPaymentError reports whether err is a PaymentError
func IsPaymentError(err error) bool {
	var pe *PaymentError
	return errors.As(err, &pe)
}
