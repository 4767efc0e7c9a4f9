// Package schema is the in-memory model the builder generator consumes.
//
// A [Record] describes a Go struct type, its type parameters and its
// fields. Each [Field] carries the attributes that drive generation:
//
//   - Default: marks the field optional, with an immediate or lazy default
//   - Validator: a func(T) (T, error) applied to every supplied value
//   - Modes: which setters to emit (value, lazy, async)
//   - Into: accept any value whose underlying type is the field type
//   - Public: export the setters of an unexported field
//   - Hidden: no setters at all; the default is always used
//   - LateBound: evaluate the default in the build function
//   - Infer: resolve a record type parameter from the setter's argument
//
// Records are usually produced by compiler/load from YAML, JSON or Go
// struct tags, or declared in Go with the [field] and [Build] helpers:
//
//	rec := schema.Build("Point").
//	    Param("T", "any", "float64").
//	    Fields(
//	        field.New("X", "T").Infer("T"),
//	        field.New("Y", "T"),
//	        field.New("Label", "string").Default(`"origin"`),
//	    ).
//	    Record()
//
// Records are treated as immutable once built: the generator derives
// everything it needs from them without modifying them.
package schema
