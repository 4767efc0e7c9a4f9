package gen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
)

// JenniferGenerator generates builder code with Jennifer.
// Files of independent records are generated in parallel.
type JenniferGenerator struct {
	graph   *Graph
	workers int
	outDir  string
	pkg     string
	logger  *slog.Logger

	// Emitter for the record code.
	emitter Emitter
	// Optional interface implementations detected at runtime.
	structGen StructGenerator

	writer *Writer
}

// NewJenniferGenerator creates a new Jennifer-based generator.
// You must call WithEmitter() to set an emitter before calling Generate().
//
// Example:
//
//	import "github.com/syssam/typestate/compiler/gen/emit"
//
//	gen := gen.NewJenniferGenerator(graph)
//	gen.WithEmitter(emit.New(gen))
//	gen.Generate(ctx)
func NewJenniferGenerator(g *Graph) *JenniferGenerator {
	return &JenniferGenerator{
		graph:   g,
		workers: g.WorkerCount(),
		outDir:  g.Target,
		pkg:     g.PackageName(),
		logger:  g.logger(),
	}
}

// WithWorkers sets the number of parallel workers.
func (g *JenniferGenerator) WithWorkers(n int) *JenniferGenerator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// WithPackage sets the output package name.
func (g *JenniferGenerator) WithPackage(pkg string) *JenniferGenerator {
	if pkg != "" {
		g.pkg = pkg
	}
	return g
}

// WithEmitter sets the code emitter.
// Additional capabilities are detected via StructGenerator.
func (g *JenniferGenerator) WithEmitter(e Emitter) *JenniferGenerator {
	if e != nil {
		g.emitter = e
		if sg, ok := e.(StructGenerator); ok {
			g.structGen = sg
		}
	}
	return g
}

// Metrics returns the writer metrics of the last Generate call.
func (g *JenniferGenerator) Metrics() WriterMetrics {
	if g.writer == nil {
		return WriterMetrics{}
	}
	return g.writer.Metrics()
}

// genTask is one file to generate.
type genTask struct {
	name string
	gen  func() (*jen.File, error)
}

// Generate generates all files with parallel execution.
// Returns an error if no emitter has been set via WithEmitter().
func (g *JenniferGenerator) Generate(ctx context.Context) error {
	if g.emitter == nil {
		return NewConfigError("Emitter", nil, "no emitter set: call WithEmitter() before Generate()")
	}
	if g.outDir == "" {
		return NewConfigError("Target", nil, "missing target directory in config")
	}
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return NewGenerationError("write", g.outDir, "create output directory", err)
	}
	if err := cleanupFeatures(g.graph.Config); err != nil {
		return err
	}
	w, err := NewWriter(g.outDir, g.FeatureEnabled(FeatureManifest.Name))
	if err != nil {
		return err
	}
	g.writer = w

	start := time.Now()
	records := g.FeatureEnabled(FeatureRecordStruct.Name) && g.structGen != nil
	var tasks []genTask
	for _, r := range g.graph.Records {
		tasks = append(tasks, genTask{name: r.FileName(), gen: func() (*jen.File, error) {
			return g.emitter.GenBuilder(r)
		}})
		if records {
			tasks = append(tasks, genTask{name: r.RecordFileName(), gen: func() (*jen.File, error) {
				return g.structGen.GenRecord(r)
			}})
		}
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(g.workers)
	for _, t := range tasks {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := t.gen()
			if err != nil {
				return err
			}
			return g.writeFile(f, t.name)
		})
	}
	if err := errg.Wait(); err != nil {
		return err
	}
	if err := w.Finish(); err != nil {
		return err
	}
	m := w.Metrics()
	g.logger.Info("typestate: generation done",
		slog.String("emitter", g.emitter.Name()),
		slog.String("target", g.outDir),
		slog.Int("records", len(g.graph.Records)),
		slog.Int("written", m.FilesGenerated),
		slog.Int("unchanged", m.FilesUnchanged),
		slog.Int("removed", m.FilesRemoved),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// =============================================================================
// GeneratorHelper interface implementation
// =============================================================================

// NewFile creates a new Jennifer file with the standard header comment.
func (g *JenniferGenerator) NewFile(pkg string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment(g.graph.HeaderComment())
	return f
}

// Pkg returns the output package name.
func (g *JenniferGenerator) Pkg() string {
	return g.pkg
}

// RuntimePkg returns the import path of the runtime package.
func (g *JenniferGenerator) RuntimePkg() string {
	return g.graph.RuntimePath()
}

// FeatureEnabled reports if the given feature name is enabled.
func (g *JenniferGenerator) FeatureEnabled(name string) bool {
	enabled, _ := g.graph.FeatureEnabled(name)
	return enabled
}

// Graph returns the analyzed graph.
func (g *JenniferGenerator) Graph() *Graph {
	return g.graph
}

// writeFile writes a generated file relative to the output directory.
func (g *JenniferGenerator) writeFile(f *jen.File, filename string) error {
	if f == nil {
		return nil
	}
	written, err := g.writer.Write(filename, f)
	if err != nil {
		return err
	}
	g.logger.Debug(fmt.Sprintf("typestate: %s", filename), slog.Bool("written", written))
	return nil
}
