package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError through errors.Is
	ErrValidation = errors.New("validation error")
	// ErrComputation matches every *ComputationError through errors.Is
	ErrComputation = errors.New("computation error")
)

// ValidationError reports malformed or insufficient caller input.
// No computation is attempted once one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the named input field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Reason
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ComputationError reports numerical degeneracy inside a forecast
type ComputationError struct {
	Op  string
	Err error
}

// NewComputationError wraps cause as a ComputationError raised by op
func NewComputationError(op string, cause error) *ComputationError {
	return &ComputationError{Op: op, Err: cause}
}

func (e *ComputationError) Error() string {
	if e.Err == nil {
		return "computation error: " + e.Op
	}
	return fmt.Sprintf("computation error: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause
func (e *ComputationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrComputation) match
func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}
