package gen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/typestate/schema"
	"github.com/syssam/typestate/schema/field"
)

// fakeEmitter emits a constructor stub per record.
type fakeEmitter struct {
	helper GeneratorHelper
	fail   string
}

func (e *fakeEmitter) Name() string { return "fake" }

func (e *fakeEmitter) GenBuilder(r *Record) (*jen.File, error) {
	if r.Name == e.fail {
		return nil, NewGenerationError("emit", r.FileName(), "boom", nil)
	}
	f := e.helper.NewFile(e.helper.Pkg())
	f.Func().Id(r.NewName()).Params().Qual("strings", "Builder").Block(
		jen.Return(jen.Qual("strings", "Builder").Values()),
	)
	return f, nil
}

// fakeStructEmitter also emits the record struct.
type fakeStructEmitter struct {
	fakeEmitter
}

func (e *fakeStructEmitter) GenRecord(r *Record) (*jen.File, error) {
	f := e.helper.NewFile(e.helper.Pkg())
	f.Type().Id(r.Name).Struct()
	return f, nil
}

func newTestGenerator(t *testing.T, target string, features []Feature, recs ...*schema.Record) *JenniferGenerator {
	t.Helper()
	cfg, err := NewConfig(WithTarget(target), WithPackageName("geo"), WithFeatures(features...), WithWorkers(2))
	require.NoError(t, err)
	g, err := NewGraph(cfg, recs...)
	require.NoError(t, err)
	return NewJenniferGenerator(g)
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestJenniferGenerator(t *testing.T) {
	line := schema.Build("Line").Fields(field.New("Len", "int")).Record()

	t.Run("requires an emitter", func(t *testing.T) {
		g := newTestGenerator(t, t.TempDir(), nil, pointSchema())
		err := g.Generate(context.Background())
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
	t.Run("requires a target", func(t *testing.T) {
		graph, err := NewGraph(&Config{PkgName: "geo"}, pointSchema())
		require.NoError(t, err)
		g := NewJenniferGenerator(graph)
		g.WithEmitter(&fakeEmitter{helper: g})
		err = g.Generate(context.Background())
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
	t.Run("writes one file per record", func(t *testing.T) {
		target := t.TempDir()
		g := newTestGenerator(t, target, nil, pointSchema(), line)
		g.WithEmitter(&fakeEmitter{helper: g})
		require.NoError(t, g.Generate(context.Background()))
		assert.Equal(t, []string{"line_builder.go", "point_builder.go"}, listFiles(t, target))

		content, err := os.ReadFile(filepath.Join(target, "point_builder.go"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "// "+DefaultHeader)
		assert.Contains(t, string(content), "package geo")
		assert.Contains(t, string(content), `import "strings"`)
		assert.Equal(t, 2, g.Metrics().FilesGenerated)
	})
	t.Run("record struct feature", func(t *testing.T) {
		target := t.TempDir()
		g := newTestGenerator(t, target, []Feature{FeatureRecordStruct}, pointSchema())
		g.WithEmitter(&fakeStructEmitter{fakeEmitter{helper: g}})
		require.NoError(t, g.Generate(context.Background()))
		assert.Equal(t, []string{"point.go", "point_builder.go"}, listFiles(t, target))
	})
	t.Run("record struct needs a struct generator", func(t *testing.T) {
		target := t.TempDir()
		g := newTestGenerator(t, target, []Feature{FeatureRecordStruct}, pointSchema())
		g.WithEmitter(&fakeEmitter{helper: g})
		require.NoError(t, g.Generate(context.Background()))
		assert.Equal(t, []string{"point_builder.go"}, listFiles(t, target))
	})
	t.Run("emitter errors are returned", func(t *testing.T) {
		g := newTestGenerator(t, t.TempDir(), nil, pointSchema(), line)
		g.WithEmitter(&fakeEmitter{helper: g, fail: "Line"})
		err := g.Generate(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrGenerationFailed))
	})
	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		g := newTestGenerator(t, t.TempDir(), nil, pointSchema())
		g.WithEmitter(&fakeEmitter{helper: g})
		err := g.Generate(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
	t.Run("manifest skips unchanged files and removes stale ones", func(t *testing.T) {
		target := t.TempDir()
		run := func(recs ...*schema.Record) WriterMetrics {
			g := newTestGenerator(t, target, []Feature{FeatureManifest}, recs...)
			g.WithEmitter(&fakeEmitter{helper: g})
			require.NoError(t, g.Generate(context.Background()))
			return g.Metrics()
		}
		m := run(pointSchema(), line)
		assert.Equal(t, 2, m.FilesGenerated)
		assert.FileExists(t, filepath.Join(target, ManifestFile))

		m = run(pointSchema(), line)
		assert.Equal(t, 0, m.FilesGenerated)
		assert.Equal(t, 2, m.FilesUnchanged)

		m = run(pointSchema())
		assert.Equal(t, 1, m.FilesRemoved)
		assert.NoFileExists(t, filepath.Join(target, "line_builder.go"))
	})
	t.Run("disabling the manifest removes it", func(t *testing.T) {
		target := t.TempDir()
		g := newTestGenerator(t, target, []Feature{FeatureManifest}, pointSchema())
		g.WithEmitter(&fakeEmitter{helper: g})
		require.NoError(t, g.Generate(context.Background()))
		require.FileExists(t, filepath.Join(target, ManifestFile))

		g = newTestGenerator(t, target, nil, pointSchema())
		g.WithEmitter(&fakeEmitter{helper: g})
		require.NoError(t, g.Generate(context.Background()))
		assert.NoFileExists(t, filepath.Join(target, ManifestFile))
		assert.FileExists(t, filepath.Join(target, "point_builder.go"))
	})
}

func TestGeneratorHelper(t *testing.T) {
	g := newTestGenerator(t, t.TempDir(), []Feature{FeatureStrictSetters}, pointSchema())
	assert.Equal(t, "geo", g.Pkg())
	assert.Equal(t, RuntimePkg, g.RuntimePkg())
	assert.True(t, g.FeatureEnabled(FeatureStrictSetters.Name))
	assert.False(t, g.FeatureEnabled(FeatureManifest.Name))
	assert.False(t, g.FeatureEnabled("setter/eager"))
	assert.NotNil(t, g.Graph())

	g.WithPackage("other").WithWorkers(4)
	assert.Equal(t, "other", g.Pkg())
	assert.Equal(t, 4, g.workers)
	g.WithWorkers(0)
	assert.Equal(t, 4, g.workers)
}
