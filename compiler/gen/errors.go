package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a schema definition error.
	ErrInvalidSchema = errors.New("typestate: invalid schema")
	// ErrUnsupported indicates an attribute combination the generator
	// does not implement, such as asynchronous default production.
	ErrUnsupported = errors.New("typestate: unsupported")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("typestate: missing configuration")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("typestate: code generation failed")
)

// SchemaError reports an invalid record or field declaration. Schema
// errors are fatal for the record they are reported on: no builder is
// emitted for it.
//
// The message reads like a compiler diagnostic:
//
//	schema/point.yml:2: Point.Label: validator given twice
type SchemaError struct {
	Pos     string // where the record was loaded from, if known
	Record  string
	Field   string // empty for record level errors
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	if e.Pos != "" {
		b.WriteString(e.Pos)
	} else {
		b.WriteString("typestate")
	}
	switch {
	case e.Record != "" && e.Field != "":
		fmt.Fprintf(&b, ": %s.%s", e.Record, e.Field)
	case e.Record != "":
		fmt.Fprintf(&b, ": %s", e.Record)
	case e.Field != "":
		fmt.Fprintf(&b, ": field %s", e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if e.Message == "" && e.Cause == nil {
		b.WriteString(": invalid declaration")
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target is ErrInvalidSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// At sets the source position of the error and returns it.
func (e *SchemaError) At(pos string) *SchemaError {
	e.Pos = pos
	return e
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(record, field, message string, cause error) *SchemaError {
	return &SchemaError{
		Record:  record,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// SchemaErrors returns every schema error wrapped by err, in the order
// they were joined.
func SchemaErrors(err error) []*SchemaError {
	var out []*SchemaError
	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *SchemaError:
			out = append(out, e)
		case interface{ Unwrap() []error }:
			for _, err := range e.Unwrap() {
				walk(err)
			}
		default:
			walk(errors.Unwrap(err))
		}
	}
	walk(err)
	return out
}

// ConfigError reports an invalid generator option.
type ConfigError struct {
	Option  string // option name, e.g. "Features"
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	switch v := e.Value.(type) {
	case nil:
		return fmt.Sprintf("typestate: option %s: %s", e.Option, e.Message)
	case string:
		return fmt.Sprintf("typestate: option %s %q: %s", e.Option, v, e.Message)
	default:
		return fmt.Sprintf("typestate: option %s %v: %s", e.Option, v, e.Message)
	}
}

// Is reports whether the target is ErrMissingConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GenerationError reports a failure while emitting, formatting or writing
// a generated file.
type GenerationError struct {
	Phase   string // "emit", "render", "format", "write", "cleanup" or "manifest"
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("typestate: ")
	b.WriteString(e.Phase)
	if e.File != "" {
		b.WriteString(" ")
		b.WriteString(e.File)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target is ErrGenerationFailed.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// unsupported returns a schema error whose cause matches ErrUnsupported.
func unsupported(record, field, what string) *SchemaError {
	return NewSchemaError(record, field, "", fmt.Errorf("%w: %s", ErrUnsupported, what))
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
