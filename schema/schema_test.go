package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/typestate/schema"
	"github.com/syssam/typestate/schema/field"
)

func TestMode(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "none", schema.ModeNone.String())
		assert.Equal(t, "value", schema.ModeValue.String())
		assert.Equal(t, "value|lazy|async", (schema.ModeValue | schema.ModeLazy | schema.ModeAsync).String())
	})

	t.Run("Has", func(t *testing.T) {
		m := schema.ModeLazy | schema.ModeAsync
		assert.True(t, m.Has(schema.ModeLazy))
		assert.True(t, m.Has(schema.ModeLazy|schema.ModeAsync))
		assert.False(t, m.Has(schema.ModeValue|schema.ModeLazy))
		assert.False(t, m.Has(schema.ModeNone))
	})

	t.Run("Sync", func(t *testing.T) {
		assert.True(t, schema.ModeLazy.Sync())
		assert.False(t, schema.ModeAsync.Sync())
	})

	t.Run("ParseMode", func(t *testing.T) {
		m, err := schema.ParseMode(" Lazy ")
		require.NoError(t, err)
		assert.Equal(t, schema.ModeLazy, m)

		_, err = schema.ParseMode("eager")
		assert.EqualError(t, err, `unknown setter mode "eager"`)
	})
}

func TestDefaultKind(t *testing.T) {
	assert.Equal(t, "default", schema.DefaultValue.String())
	assert.Equal(t, "default_lazy", schema.DefaultLazy.String())
	assert.Equal(t, "default_async", schema.DefaultAsync.String())
}

func TestBuild(t *testing.T) {
	rec := schema.Build("Point").
		Doc("Point is a 2D point.").
		Param("T", "", "float64").
		Import("uuid", "github.com/google/uuid").
		Fields(
			field.New("X", "T").Infer("T"),
			field.New("Y", "T"),
			field.New("id", "uuid.UUID").DefaultLazy("uuid.New").Hidden(),
		).
		Record()

	assert.Equal(t, "Point", rec.Name)
	assert.True(t, rec.Exported())
	require.Len(t, rec.Fields, 3)
	assert.Equal(t, "X", rec.Fields[0].Name)
	assert.Equal(t, "github.com/google/uuid", rec.Imports["uuid"])

	p := rec.Param("T")
	require.NotNil(t, p)
	assert.Equal(t, "float64", p.Default)
	assert.Nil(t, rec.Param("U"))

	assert.NotNil(t, rec.Field("id"))
	assert.False(t, rec.Field("id").Exported())
	assert.Nil(t, rec.Field("Z"))
}
