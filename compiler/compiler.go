// Package compiler loads record schemas and generates their type-state
// builders.
//
//	cfg, err := gen.NewConfig(gen.WithTarget("./geo"), gen.WithPackage("github.com/acme/geo"))
//	if err != nil {
//		return err
//	}
//	return compiler.Generate(ctx, cfg, "./schema")
package compiler

import (
	"context"
	"fmt"

	"github.com/syssam/typestate/compiler/gen"
	"github.com/syssam/typestate/compiler/gen/emit"
	"github.com/syssam/typestate/compiler/load"
	"github.com/syssam/typestate/schema"
)

// Load loads the records declared in the given schema files, directories
// or Go package patterns.
func Load(paths ...string) ([]*schema.Record, error) {
	return (&load.Config{Paths: paths}).Load()
}

// LoadGraph loads the records of paths and analyzes them.
func LoadGraph(cfg *gen.Config, paths ...string) (*gen.Graph, error) {
	recs, err := Load(paths...)
	if err != nil {
		return nil, err
	}
	return gen.NewGraph(cfg, recs...)
}

// Generate loads the records of paths and writes their builders to the
// configured target directory.
func Generate(ctx context.Context, cfg *gen.Config, paths ...string) error {
	recs, err := Load(paths...)
	if err != nil {
		return err
	}
	return GenerateRecords(ctx, cfg, recs...)
}

// GenerateRecords writes the builders of already loaded records.
func GenerateRecords(ctx context.Context, cfg *gen.Config, recs ...*schema.Record) error {
	g, err := gen.NewGraph(cfg, recs...)
	if err != nil {
		return fmt.Errorf("typestate/compiler: %w", err)
	}
	jg := gen.NewJenniferGenerator(g)
	jg.WithEmitter(emit.New(jg))
	return jg.Generate(ctx)
}
