// Package field provides a fluent builder for schema fields.
//
//	field.New("Label", "string").
//	    Default(`"origin"`).
//	    Validator("checkLabel").
//	    Setter(schema.ModeValue, schema.ModeLazy)
//
// Attributes that may only be declared once (defaults, hidden, public,
// validator, setter, infer) are recorded in Field.Repeated when declared
// again; the generator reports them as schema errors.
package field

import (
	"slices"

	"github.com/syssam/typestate/schema"
)

// Builder builds a schema.Field.
type Builder struct {
	desc     *schema.Field
	declared map[string]bool
}

// New returns a builder for a field named name of the Go type typ.
func New(name, typ string) *Builder {
	return &Builder{
		desc:     &schema.Field{Name: name, Type: typ},
		declared: make(map[string]bool),
	}
}

// declare records attr and reports whether it was the first declaration.
func (b *Builder) declare(attr string) bool {
	if b.declared[attr] {
		if !slices.Contains(b.desc.Repeated, attr) {
			b.desc.Repeated = append(b.desc.Repeated, attr)
		}
		return false
	}
	b.declared[attr] = true
	return true
}

// Doc sets the field documentation.
func (b *Builder) Doc(doc string) *Builder {
	b.desc.Doc = doc
	return b
}

// Default sets an immediate default expression, e.g. `"origin"` or "42".
func (b *Builder) Default(expr string) *Builder {
	return b.setDefault(schema.DefaultValue, expr)
}

// DefaultLazy sets the expression of a zero-argument producer called
// whenever the default is needed, e.g. "time.Now".
func (b *Builder) DefaultLazy(expr string) *Builder {
	return b.setDefault(schema.DefaultLazy, expr)
}

// DefaultAsync declares an asynchronous default producer. The generator
// rejects it; it exists so schemas can be loaded and reported faithfully.
func (b *Builder) DefaultAsync(expr string) *Builder {
	return b.setDefault(schema.DefaultAsync, expr)
}

func (b *Builder) setDefault(kind schema.DefaultKind, expr string) *Builder {
	if b.declare("default") {
		b.desc.Default = &schema.Default{Kind: kind, Expr: expr}
	}
	return b
}

// Validator sets the validator expression, a func(T) (T, error).
func (b *Builder) Validator(expr string) *Builder {
	if b.declare("validator") {
		b.desc.Validator = expr
	}
	return b
}

// Setter sets the allowed evaluation modes.
func (b *Builder) Setter(modes ...schema.Mode) *Builder {
	if b.declare("setter") {
		for _, m := range modes {
			b.desc.Modes |= m
		}
	}
	return b
}

// Into makes the value setter accept any value whose underlying type is
// the field type.
func (b *Builder) Into() *Builder {
	b.desc.Into = true
	return b
}

// Public exports the field setters regardless of the field's visibility.
func (b *Builder) Public() *Builder {
	if b.declare("public") {
		b.desc.Public = true
	}
	return b
}

// Hidden suppresses the field setters. The field must have a default.
func (b *Builder) Hidden() *Builder {
	if b.declare("hidden") {
		b.desc.Hidden = true
	}
	return b
}

// LateBound defers evaluation of the default to the build functions.
func (b *Builder) LateBound() *Builder {
	b.desc.LateBound = true
	return b
}

// Infer marks the field setter as the one resolving the given record
// type parameters.
func (b *Builder) Infer(params ...string) *Builder {
	if b.declare("infer") {
		b.desc.Infer = append(b.desc.Infer, params...)
	}
	return b
}

// Descriptor implements schema.Descriptor.
func (b *Builder) Descriptor() *schema.Field {
	return b.desc
}
