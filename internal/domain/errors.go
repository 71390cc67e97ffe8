package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidRating is returned when a review rating is not one of the
	// four defined grades.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrInvalidReviewState is returned when a review state value is not one
	// of the four defined lifecycle stages.
	ErrInvalidReviewState = errors.New("invalid review state")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError wraps a field-level validation failure with enough context
// for the API layer to build a useful response without string matching.
type ValidationError struct {
	Field   string // The field that failed validation
	Message string // Human-readable description
	Err     error  // Sentinel error, e.g. ErrValidation or ErrInvalidID
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
