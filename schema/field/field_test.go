package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/typestate/schema"
	"github.com/syssam/typestate/schema/field"
)

func TestNew(t *testing.T) {
	fd := field.New("X", "T").
		Doc("horizontal coordinate").
		Infer("T").
		Descriptor()
	assert.Equal(t, "X", fd.Name)
	assert.Equal(t, "T", fd.Type)
	assert.Equal(t, "horizontal coordinate", fd.Doc)
	assert.Equal(t, []string{"T"}, fd.Infer)
	assert.False(t, fd.Optional())
	assert.Equal(t, schema.ModeValue, fd.EffectiveModes())
	assert.Empty(t, fd.Repeated)
}

func TestDefaults(t *testing.T) {
	fd := field.New("Label", "string").Default(`"origin"`).Descriptor()
	assert.True(t, fd.Optional())
	assert.Equal(t, schema.DefaultValue, fd.Default.Kind)
	assert.Equal(t, `"origin"`, fd.Default.Expr)

	fd = field.New("ID", "string").DefaultLazy("newID").Hidden().Descriptor()
	assert.Equal(t, schema.DefaultLazy, fd.Default.Kind)
	assert.True(t, fd.Hidden)

	fd = field.New("Token", "string").DefaultAsync("fetch").Descriptor()
	assert.Equal(t, schema.DefaultAsync, fd.Default.Kind)
}

func TestSetterModes(t *testing.T) {
	fd := field.New("Ready", "bool").
		Setter(schema.ModeValue, schema.ModeAsync).
		Validator("checkReady").
		Descriptor()
	assert.True(t, fd.Modes.Has(schema.ModeValue))
	assert.True(t, fd.Modes.Has(schema.ModeAsync))
	assert.False(t, fd.Modes.Has(schema.ModeLazy))
	assert.Equal(t, "value|async", fd.Modes.String())
	assert.Equal(t, "checkReady", fd.Validator)
}

func TestFlags(t *testing.T) {
	fd := field.New("name", "string").Into().Public().LateBound().Descriptor()
	assert.True(t, fd.Into)
	assert.True(t, fd.Public)
	assert.True(t, fd.LateBound)
	assert.False(t, fd.Exported())
}

func TestRepeated(t *testing.T) {
	t.Run("first declaration wins", func(t *testing.T) {
		fd := field.New("N", "int").Default("1").DefaultLazy("two").Descriptor()
		assert.Equal(t, schema.DefaultValue, fd.Default.Kind)
		assert.Equal(t, "1", fd.Default.Expr)
		assert.Equal(t, []string{"default"}, fd.Repeated)
	})

	t.Run("each attribute is reported once", func(t *testing.T) {
		fd := field.New("N", "int").
			Default("1").Default("2").Default("3").
			Hidden().Hidden().
			Public().Public().
			Validator("a").Validator("b").
			Descriptor()
		assert.Equal(t, []string{"default", "hidden", "public", "validator"}, fd.Repeated)
	})

	t.Run("repeatable flags are not reported", func(t *testing.T) {
		fd := field.New("N", "int").Into().Into().LateBound().LateBound().Descriptor()
		assert.Empty(t, fd.Repeated)
	})
}
