package typestate

import (
	"errors"
	"fmt"
)

// Standard sentinel errors returned by generated builders.
var (
	// ErrValidation is matched by every error a field validator reports,
	// whether from a setter or from a build function.
	ErrValidation = errors.New("typestate: validation failed")

	// ErrAlreadySet is reported when a setter is called twice for a field
	// that does not permit re-setting.
	ErrAlreadySet = errors.New("typestate: field already set")

	// ErrUnresolved is returned when a representation holds no value at
	// construction time (unset, or a late-bound default that the build
	// function did not evaluate).
	ErrUnresolved = errors.New("typestate: field has no value")

	// ErrAsyncRequired is returned when an asynchronous representation is
	// resolved from a synchronous build.
	ErrAsyncRequired = errors.New("typestate: asynchronous field requires an async build")

	// ErrProducerClosed is returned when an asynchronous producer closes its
	// channel without sending a value, or returns a nil channel.
	ErrProducerClosed = errors.New("typestate: async producer closed without a value")
)

// ValidationError reports a failed validator for a record field.
type ValidationError struct {
	Record string // Record type name
	Field  string // Field name
	Err    error  // Error returned by the validator
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	if e.Record == "" {
		return fmt.Sprintf("typestate: validation failed for field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("typestate: validation failed for %s.%s: %v", e.Record, e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ValidationError.
// This allows errors.Is(err, ErrValidation) to return true.
func (e *ValidationError) Is(err error) bool {
	return err == ErrValidation
}

// NewValidationError returns a new ValidationError for the given field.
func NewValidationError(record, field string, err error) *ValidationError {
	return &ValidationError{Record: record, Field: field, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// AlreadySetError is the panic value of a setter invoked twice on the
// same builder chain.
type AlreadySetError struct {
	Record string
	Field  string
	Kind   Kind // Representation kind found in the slot
}

// Error returns the error string.
func (e *AlreadySetError) Error() string {
	return fmt.Sprintf("typestate: %s.%s already set (%s)", e.Record, e.Field, e.Kind)
}

// Is reports whether the target error matches AlreadySetError.
func (e *AlreadySetError) Is(err error) bool {
	return err == ErrAlreadySet
}

// ResolveError wraps a resolution failure with the field it happened on.
type ResolveError struct {
	Record string
	Field  string
	Err    error
}

// Error returns the error string.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("typestate: resolving %s.%s: %v", e.Record, e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *ResolveError) Unwrap() error {
	return e.Err
}
