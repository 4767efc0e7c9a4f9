package integration

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/typestate"
	"github.com/syssam/typestate/compiler"
	"github.com/syssam/typestate/compiler/gen"
)

type label string

// recorder collects the order in which producers run.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func panicValue(f func()) (v any) {
	defer func() { v = recover() }()
	f()
	return nil
}

func TestDefaults(t *testing.T) {
	p, err := BuildPoint(NewPoint().X(1).Y(2))
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.X)
	assert.Equal(t, 2.0, p.Y)
	assert.Equal(t, "origin", p.Label)
	assert.False(t, p.Ready)
	assert.Nil(t, p.Tags)
	assert.NotEqual(t, uuid.Nil, p.ID())

	q, err := BuildPoint(NewPoint().X(1).Y(2))
	require.NoError(t, err)
	assert.NotEqual(t, p.ID(), q.ID(), "hidden default is evaluated per build")
}

func TestSetterOrder(t *testing.T) {
	a, err := BuildPoint(NewPoint().X(1).Y(2).Ready(true).Tags([]float64{3}))
	require.NoError(t, err)
	b, err := BuildPoint(NewPoint().Tags([]float64{3}).Ready(true).Y(2).X(1))
	require.NoError(t, err)
	if diff := cmp.Diff(a, b, cmpopts.IgnoreUnexported(Point[float64]{})); diff != "" {
		t.Errorf("records differ (-a +b):\n%s", diff)
	}
}

func TestValidation(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		b, err := NewPoint().X(1).Y(2).Label("  north ")
		require.NoError(t, err)
		p, err := BuildPoint(b)
		require.NoError(t, err)
		assert.Equal(t, "north", p.Label)
	})
	t.Run("rejected value", func(t *testing.T) {
		_, err := NewPoint().X(1).Y(2).Label(" ")
		require.ErrorIs(t, err, typestate.ErrValidation)
		require.ErrorIs(t, err, errEmptyLabel)
		var verr *typestate.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Point", verr.Record)
		assert.Equal(t, "Label", verr.Field)
	})
	t.Run("lazy", func(t *testing.T) {
		p, err := BuildPoint(NewPoint().X(1).Y(2).LabelLazy(func() string { return " south" }))
		require.NoError(t, err)
		assert.Equal(t, "south", p.Label)
	})
	t.Run("rejected lazy value", func(t *testing.T) {
		p, err := BuildPoint(NewPoint().X(1).Y(2).LabelLazy(func() string { return "" }))
		require.ErrorIs(t, err, typestate.ErrValidation)
		assert.True(t, typestate.IsValidationError(err))
		assert.Zero(t, p)
	})
	t.Run("into", func(t *testing.T) {
		b, err := PointLabelInto(NewPoint().X(1).Y(2), label(" east "))
		require.NoError(t, err)
		p, err := BuildPoint(b)
		require.NoError(t, err)
		assert.Equal(t, "east", p.Label)
	})
}

func TestInference(t *testing.T) {
	p, err := BuildPoint(InferPointX(NewPoint(), 3).Y(4))
	require.NoError(t, err)
	var want Point[int]
	want.X, want.Y, want.Label = 3, 4, "origin"
	if diff := cmp.Diff(want, p, cmpopts.IgnoreUnexported(Point[int]{})); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	q, err := BuildPoint(InferPointX(NewPoint(), "a").Y("b").Tags([]string{"c"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, q.Tags)

	r, err := BuildPoint(NewPointBuilder[uint8]().X(1).Y(2))
	require.NoError(t, err)
	assert.Equal(t, uint8(1), r.X)
}

func TestAlreadySet(t *testing.T) {
	tests := []struct {
		name  string
		field string
		kind  typestate.Kind
		set   func()
	}{
		{"value", "Y", typestate.KindValue, func() { NewPoint().Y(1).Y(2) }},
		{"lazy", "Label", typestate.KindLazyValidated, func() {
			_, _ = NewPoint().LabelLazy(func() string { return "a" }).Label("b")
		}},
		{"async", "Ready", typestate.KindAsync, func() {
			NewPoint().ReadyAsync(func(context.Context) <-chan bool { return nil }).Ready(true)
		}},
		{"late bound", "Tags", typestate.KindValue, func() { NewPoint().Tags(nil).Tags(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := panicValue(tt.set)
			err, ok := v.(error)
			require.True(t, ok, "panic value %v is not an error", v)
			require.ErrorIs(t, err, typestate.ErrAlreadySet)
			var aerr *typestate.AlreadySetError
			require.ErrorAs(t, err, &aerr)
			assert.Equal(t, "Point", aerr.Record)
			assert.Equal(t, tt.field, aerr.Field)
			assert.Equal(t, tt.kind, aerr.Kind)
		})
	}
	assert.Nil(t, panicValue(func() { NewPoint().Label("a") }), "a default does not count as set")
}

func TestStrictSetters(t *testing.T) {
	b := SetPointTags(SetPointY(NewPoint().X(1), 2), []float64{5})
	p, err := BuildPoint(b)
	require.NoError(t, err)
	assert.Equal(t, 2.0, p.Y)
	assert.Equal(t, []float64{5}, p.Tags)
}

func TestBuildAsync(t *testing.T) {
	ready := func(v bool) func(context.Context) <-chan bool {
		return func(context.Context) <-chan bool {
			ch := make(chan bool, 1)
			ch <- v
			return ch
		}
	}
	t.Run("awaits producers", func(t *testing.T) {
		p, err := BuildPointAsync(context.Background(), NewPoint().X(1).Y(2).ReadyAsync(ready(true)))
		require.NoError(t, err)
		assert.True(t, p.Ready)
		assert.Equal(t, "origin", p.Label)
	})
	t.Run("sync builder", func(t *testing.T) {
		p, err := BuildPointAsync(context.Background(), NewPoint().X(1).Y(2))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, p.ID())
	})
	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := BuildPointAsync(ctx, NewPoint().X(1).Y(2).ReadyAsync(ready(true)))
		require.ErrorIs(t, err, context.Canceled)
		var rerr *typestate.ResolveError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, "Ready", rerr.Field)
	})
	t.Run("closed channel", func(t *testing.T) {
		closed := func(context.Context) <-chan bool {
			ch := make(chan bool)
			close(ch)
			return ch
		}
		_, err := BuildPointAsync(context.Background(), NewPoint().X(1).Y(2).ReadyAsync(closed))
		require.ErrorIs(t, err, typestate.ErrProducerClosed)
	})
	t.Run("producer order", func(t *testing.T) {
		rec := &recorder{}
		b := NewPoint().X(1).Y(2).
			LabelLazy(func() string { rec.add("Label"); return "a" }).
			ReadyAsync(func(context.Context) <-chan bool {
				rec.add("Ready")
				ch := make(chan bool, 1)
				ch <- true
				return ch
			})
		_, err := BuildPointAsync(context.Background(), b)
		require.NoError(t, err)
		assert.Equal(t, []string{"Label", "Ready"}, rec.calls)
	})
	t.Run("validation stops the build", func(t *testing.T) {
		rec := &recorder{}
		b := NewPoint().X(1).Y(2).
			LabelLazy(func() string { rec.add("Label"); return "" }).
			ReadyAsync(func(context.Context) <-chan bool {
				rec.add("Ready")
				return nil
			})
		p, err := BuildPointAsync(context.Background(), b)
		require.ErrorIs(t, err, typestate.ErrValidation)
		assert.Zero(t, p)
		assert.Equal(t, []string{"Label"}, rec.calls)
	})
}

// TestGeneratedUpToDate regenerates the builder and checks that the
// checked-in file declares the same identifiers.
func TestGeneratedUpToDate(t *testing.T) {
	if testing.Short() {
		t.Skip("loads Go packages")
	}
	target := t.TempDir()
	cfg, err := gen.NewConfig(
		gen.WithTarget(target),
		gen.WithPackageName("integration"),
		gen.WithFeatureNames(gen.FeatureStrictSetters.Name),
	)
	require.NoError(t, err)
	require.NoError(t, compiler.Generate(context.Background(), cfg, "."))

	want := declNames(t, "point_builder.go")
	got := declNames(t, filepath.Join(target, "point_builder.go"))
	assert.Equal(t, want, got, "point_builder.go is stale, run go generate")
}

func declNames(t *testing.T, path string) []string {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.SkipObjectResolution)
	require.NoError(t, err)
	var names []string
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			names = append(names, d.Name.Name)
		case *ast.GenDecl:
			for _, s := range d.Specs {
				if ts, ok := s.(*ast.TypeSpec); ok {
					names = append(names, ts.Name.Name)
				}
			}
		}
	}
	sort.Strings(names)
	return names
}
