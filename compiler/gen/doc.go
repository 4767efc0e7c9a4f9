// Package gen analyzes schema records and drives the generation of their
// type-state builders.
//
// # Pipeline
//
// A schema record flows through the following stages:
//
//	schema.Record
//	    │
//	    ▼
//	Classify        required/optional partition, attribute checks
//	    │
//	    ▼
//	NewRecord       type parameters, inference targets, late-bound
//	    │           defaults, slot and identifier names
//	    ▼
//	State           type-state tuples of constructors, setters and
//	    │           build functions
//	    ▼
//	Emitter         Go source (see package emit)
//	    │
//	    ▼
//	Writer          goimports, atomic writes, manifest
//
// # Type-state
//
// The builder of a record with fields X, Y and Label carries one phantom
// type parameter per non-hidden field:
//
//	type PointBuilder[T any, S1, S2, S3 any] struct { ... }
//
// Each slot is instantiated with typestate.Unset until its setter is
// called, and with the field type afterwards. The build function accepts
// only builders whose required slots are filled:
//
//	func BuildPoint[T any, S3 any](b PointBuilder[T, T, T, S3]) Point[T]
//
// Setters are methods; the variants Go methods cannot express (inference,
// conversion and strict setters) are package-level generic functions.
//
// # Configuration
//
// Generation is configured with functional options:
//
//	cfg, err := gen.NewConfig(
//	    gen.WithTarget("./geo"),
//	    gen.WithFeatures(gen.FeatureStrictSetters),
//	)
//
// or with a typestate.yml project file, see LoadConfigFile.
//
// # Errors
//
// Schema errors are reported as *SchemaError and match ErrInvalidSchema.
// Attribute combinations without a defined semantics, such as asynchronous
// default production, match ErrUnsupported as well. No file is written when
// any record of the graph is invalid.
package gen
