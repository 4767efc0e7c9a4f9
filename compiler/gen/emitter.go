package gen

import "github.com/dave/jennifer/jen"

// RecordGenerator generates per-record code.
// Each method is called once per record of the graph.
type RecordGenerator interface {
	// GenBuilder generates the builder file ({record}_builder.go).
	GenBuilder(r *Record) (*jen.File, error)
}

// StructGenerator generates the record struct ({record}.go).
// It is used when FeatureRecordStruct is enabled.
type StructGenerator interface {
	GenRecord(r *Record) (*jen.File, error)
}

// Emitter is the minimum interface a code emitter must implement.
//
//	┌─────────────────────────────────────────────┐
//	│              JenniferGenerator              │
//	│  (parallel execution, formatting, writing)  │
//	└──────────────────────┬──────────────────────┘
//	                       │ uses
//	                       ▼
//	┌─────────────────────────────────────────────┐
//	│                   Emitter                   │
//	│   (builder type, setters, build functions)  │
//	└─────────────────────────────────────────────┘
//
// Methods return *jen.File containing the generated code. The generator
// calls them and writes the files to disk.
type Emitter interface {
	// Name returns the emitter name.
	Name() string
	RecordGenerator
}

// GeneratorHelper provides helper methods for emitter implementations.
// JenniferGenerator implements this interface, allowing emitter packages
// to use helper methods without importing the full generator.
type GeneratorHelper interface {
	// NewFile creates a new Jennifer file with the standard header comment.
	NewFile(pkg string) *jen.File

	// Pkg returns the output package name.
	Pkg() string

	// RuntimePkg returns the import path of the runtime package.
	RuntimePkg() string

	// FeatureEnabled reports if the given feature name is enabled.
	FeatureEnabled(name string) bool

	// Graph returns the analyzed graph.
	Graph() *Graph
}
