package form

import (
	"errors"
	"fmt"
)

// Common form errors
var (
	// ErrSubmissionInFlight is returned when Submit is called while a
	// previous submission has not finished. The submitting flag is the
	// mutual-exclusion guard; a second concurrent create request is never
	// issued.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
)

// ValidationError is raised locally, before any network call, when
// client-side field rules fail. It never reaches the API client.
type ValidationError struct {
	// Field is the failing field identifier. Line-item fields are
	// addressed as "items.N.<field>".
	Field string

	// Message is the human-readable rule message for the first failing rule.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("form: validation failed for %q: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
