package gen

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/typestate/schema"
)

func pointRecord(t *testing.T) *Record {
	t.Helper()
	r, err := NewRecord(&Config{}, pointSchema())
	require.NoError(t, err)
	return r
}

func mustField(t *testing.T, r *Record, name string) *Field {
	t.Helper()
	f, ok := r.FieldByName(name)
	require.True(t, ok, "field %s", name)
	return f
}

func TestStates(t *testing.T) {
	r := pointRecord(t)

	// Slots: X, Y, Label, Ready, Tags.
	assert.Equal(t, "PointBuilder[T, S1, S2, S3, S4, S5, M]", r.GenericState().String())
	assert.Equal(t, "PointBuilder[T, typestate.Unset, typestate.Unset, string, bool, typestate.Unset, typestate.SyncBuild]", r.InitialState().String())
	assert.Equal(t, "PointBuilder[float64, typestate.Unset, typestate.Unset, string, bool, typestate.Unset, typestate.SyncBuild]", r.ConstructorState().String())

	sync := r.TerminalState(false)
	assert.Equal(t, "PointBuilder[T, T, T, S3, S4, S5, typestate.SyncBuild]", sync.String())
	assert.Equal(t, []string{"S3", "S4", "S5"}, sync.FreeVars())
	assert.Equal(t, []string{"S3", "S4", "S5", "M"}, r.TerminalState(true).FreeVars())
}

func TestStateComplete(t *testing.T) {
	r := pointRecord(t)
	s := r.InitialState()
	assert.False(t, s.Complete())
	assert.False(t, s.With(0, Filled).Complete())
	assert.True(t, s.With(0, Filled).With(1, Filled).Complete())
	assert.Equal(t, SlotUnset, s.Slots[0].Kind, "With must not modify the receiver")
}

func TestSetterStates(t *testing.T) {
	r := pointRecord(t)

	in, out := r.SetterStates(mustField(t, r, "Y"), schema.ModeValue, false)
	assert.Equal(t, "PointBuilder[T, S1, S2, S3, S4, S5, M]", in.String())
	assert.Equal(t, "PointBuilder[T, S1, T, S3, S4, S5, M]", out.String())

	in, _ = r.SetterStates(mustField(t, r, "Y"), schema.ModeValue, true)
	assert.Equal(t, "PointBuilder[T, S1, typestate.Unset, S3, S4, S5, M]", in.String())

	_, out = r.SetterStates(mustField(t, r, "Ready"), schema.ModeAsync, false)
	assert.Equal(t, "PointBuilder[T, S1, S2, S3, bool, S5, typestate.AsyncBuild]", out.String())

	_, out = r.SetterStates(mustField(t, r, "Tags"), schema.ModeValue, false)
	assert.Equal(t, "PointBuilder[T, S1, S2, S3, S4, []T, M]", out.String())
}

func TestInferStates(t *testing.T) {
	r := pointRecord(t)
	x := mustField(t, r, "X")

	in, out := r.InferStates(x, schema.ModeValue)
	assert.Equal(t, "PointBuilder[T, S1, typestate.Unset, S3, S4, typestate.Unset, M]", in.String())
	assert.Equal(t, "PointBuilder[T2, T2, typestate.Unset, S3, S4, typestate.Unset, M]", out.String())
	assert.Equal(t, "[]T2", exprString(out.FieldType(mustField(t, r, "Tags"))))
	assert.Equal(t, []string{"T2"}, x.FreshParams())
}

func TestSubst(t *testing.T) {
	env := map[string]ast.Expr{"T": ast.NewIdent("int")}
	tests := []struct {
		in, want string
	}{
		{"T", "int"},
		{"map[K][]T", "map[K][]int"},
		{"func(T) (T, error)", "func(int) (int, error)"},
		{"pkg.T", "pkg.T"},
		{"Pair[T, string]", "Pair[int, string]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			expr, err := parseExpr(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, exprString(Subst(expr, env)))
			assert.Equal(t, tt.in, exprString(expr), "input must not be modified")
		})
	}
}
