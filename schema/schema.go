package schema

import (
	"fmt"
	"go/token"
	"strings"
)

// Mode is a set of evaluation modes a field setter can be emitted for.
type Mode uint8

// Evaluation modes.
const (
	// ModeValue emits a setter taking the value itself.
	ModeValue Mode = 1 << iota
	// ModeLazy emits a setter taking a zero-argument producer called at build time.
	ModeLazy
	// ModeAsync emits a setter taking an asynchronous producer awaited by the async build.
	ModeAsync

	// ModeNone is the empty set. A field with no modes gets ModeValue.
	ModeNone Mode = 0
)

// Modes lists the individual modes in emission order.
var Modes = []Mode{ModeValue, ModeLazy, ModeAsync}

var modeNames = map[Mode]string{
	ModeValue: "value",
	ModeLazy:  "lazy",
	ModeAsync: "async",
}

// Has reports whether every mode in o is in m.
func (m Mode) Has(o Mode) bool { return o != 0 && m&o == o }

// Sync reports whether m contains a synchronous mode.
func (m Mode) Sync() bool { return m&(ModeValue|ModeLazy) != 0 }

// String returns the modes joined by "|", e.g. "value|lazy".
func (m Mode) String() string {
	if m == ModeNone {
		return "none"
	}
	var names []string
	for _, o := range Modes {
		if m.Has(o) {
			names = append(names, modeNames[o])
		}
	}
	return strings.Join(names, "|")
}

// ParseMode parses a single mode name.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("unknown setter mode %q", s)
}

// DefaultKind describes how a default value is produced.
type DefaultKind uint8

// Default production rules.
const (
	// DefaultValue is an immediate expression evaluated when the default is needed.
	DefaultValue DefaultKind = iota + 1
	// DefaultLazy is an expression of a zero-argument producer.
	DefaultLazy
	// DefaultAsync is an asynchronous producer. It is not supported by the
	// generator and is reported as a schema error.
	DefaultAsync
)

// String returns the attribute name of the rule.
func (k DefaultKind) String() string {
	switch k {
	case DefaultValue:
		return "default"
	case DefaultLazy:
		return "default_lazy"
	case DefaultAsync:
		return "default_async"
	default:
		return fmt.Sprintf("DefaultKind(%d)", k)
	}
}

// Default is a default-production rule.
type Default struct {
	Kind DefaultKind `json:"kind"`
	Expr string      `json:"expr"`
}

// TypeParam is a type parameter of a record.
type TypeParam struct {
	Name string `json:"name"`
	// Constraint is the Go constraint expression. Empty means any.
	Constraint string `json:"constraint,omitempty"`
	// Default is the type used by the no-argument constructor. Go has no
	// default type arguments; the generator specializes for it.
	Default string `json:"default,omitempty"`
}

// Field describes one field of a record.
type Field struct {
	// Name is the Go identifier of the record's struct field.
	Name string `json:"name"`
	// Type is a Go type expression. It may reference the record's type
	// parameters and package selectors listed in Record.Imports.
	Type string `json:"type"`
	// Doc is the field documentation copied onto its setters.
	Doc string `json:"doc,omitempty"`
	// Default marks the field optional.
	Default *Default `json:"default,omitempty"`
	// Validator is an expression of type func(T) (T, error).
	Validator string `json:"validator,omitempty"`
	// Modes is the set of setter modes. ModeNone means ModeValue.
	Modes Mode `json:"modes,omitempty"`
	// Into makes the value setter accept any type whose underlying type is Type.
	Into bool `json:"into,omitempty"`
	// Public exports the setters of an unexported field.
	Public bool `json:"public,omitempty"`
	// Hidden suppresses setters. Requires a default.
	Hidden bool `json:"hidden,omitempty"`
	// LateBound evaluates the default inside the build functions, where the
	// record's final instantiation is known.
	LateBound bool `json:"late_bound,omitempty"`
	// Infer lists the type parameters resolved from this field's setter.
	Infer []string `json:"infer,omitempty"`
	// Repeated lists attributes that were declared more than once.
	Repeated []string `json:"repeated,omitempty"`
}

// Optional reports whether the field has a default-production rule.
func (f *Field) Optional() bool { return f.Default != nil }

// Exported reports whether the field's identifier is exported.
func (f *Field) Exported() bool { return token.IsExported(f.Name) }

// EffectiveModes returns the declared modes, or ModeValue if none was declared.
func (f *Field) EffectiveModes() Mode {
	if f.Modes == ModeNone {
		return ModeValue
	}
	return f.Modes
}

// Record describes a record type and the fields its builder is generated for.
type Record struct {
	Name   string       `json:"name"`
	Doc    string       `json:"doc,omitempty"`
	Params []*TypeParam `json:"params,omitempty"`
	Fields []*Field     `json:"fields"`
	// Imports maps package names used in type and default expressions to
	// their import paths, e.g. {"uuid": "github.com/google/uuid"}.
	Imports map[string]string `json:"imports,omitempty"`
	// Pos is the source position the record was loaded from.
	Pos string `json:"-"`
}

// Exported reports whether the record's identifier is exported.
func (r *Record) Exported() bool { return token.IsExported(r.Name) }

// Param returns the type parameter with the given name, or nil.
func (r *Record) Param(name string) *TypeParam {
	for _, p := range r.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Field returns the field with the given name, or nil.
func (r *Record) Field(name string) *Field {
	for _, f := range r.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}
