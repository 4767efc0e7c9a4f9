// Package emit renders analyzed records into Go source with Jennifer.
//
// Usage:
//
//	generator := gen.NewJenniferGenerator(graph)
//	generator.WithEmitter(emit.New(generator))
//	generator.Generate(ctx)
//
// Generated code structure:
//
//	{target}/
//	├── {record}_builder.go  # builder type, constructors, setters, build functions
//	└── {record}.go          # record struct (record/struct feature)
package emit

import (
	"path"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/typestate/compiler/gen"
)

// Emitter implements gen.Emitter and gen.StructGenerator.
type Emitter struct {
	helper gen.GeneratorHelper
}

// New creates an emitter. The helper is usually a *gen.JenniferGenerator.
func New(helper gen.GeneratorHelper) *Emitter {
	return &Emitter{helper: helper}
}

// Name returns the emitter name.
func (e *Emitter) Name() string {
	return "typestate"
}

// GenBuilder generates the builder file ({record}_builder.go).
func (e *Emitter) GenBuilder(r *gen.Record) (*jen.File, error) {
	if r == nil {
		return nil, gen.NewGenerationError("emit", "", "nil record", nil)
	}
	f := e.newFile(r)
	b := &builder{c: newConv(e.helper, r), r: r, strict: e.helper.FeatureEnabled(gen.FeatureStrictSetters.Name)}
	b.genType(f)
	b.genConstructors(f)
	for _, fld := range r.Fields {
		if fld.Hidden {
			continue
		}
		b.genSetters(f, fld)
	}
	if r.HasSyncBuild() {
		b.genBuild(f)
	}
	if r.HasAsync() {
		b.genBuildAsync(f)
	}
	return f, nil
}

// GenRecord generates the record struct file ({record}.go).
func (e *Emitter) GenRecord(r *gen.Record) (*jen.File, error) {
	if r == nil {
		return nil, gen.NewGenerationError("emit", "", "nil record", nil)
	}
	f := e.newFile(r)
	genRecord(f, newConv(e.helper, r), r)
	return f, nil
}

// newFile creates a file and registers the record's import aliases.
func (e *Emitter) newFile(r *gen.Record) *jen.File {
	f := e.helper.NewFile(e.helper.Pkg())
	for alias, p := range r.Imports {
		if alias != path.Base(p) {
			f.ImportAlias(p, alias)
		}
	}
	return f
}

// Verify interface compliance.
var (
	_ gen.Emitter         = (*Emitter)(nil)
	_ gen.StructGenerator = (*Emitter)(nil)
)
