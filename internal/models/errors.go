package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when input fails a domain invariant. No state is changed.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a payment id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable is returned when storage cannot be read or migrated.
	// During initialization it is fatal.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidRate is returned when a conversion rate is not positive.
	ErrInvalidRate = errors.New("invalid conversion rate")

	// ErrParse is returned when a remote payload does not match its schema.
	ErrParse = errors.New("malformed payload")
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
