package model

import "errors"

// ErrNotFound signals that a referenced entry, employee, work type or
// project does not exist. Repositories translate missing rows and
// foreign key violations to this sentinel.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed input rejected at the workflow
// boundary before anything is persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Field + ": " + e.Reason
}

// NewValidationError builds a ValidationError for one offending field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
