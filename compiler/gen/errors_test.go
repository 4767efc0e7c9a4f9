package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/typestate/schema"
	"github.com/syssam/typestate/schema/field"
)

func TestSchemaError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := NewSchemaError("Point", "X", "invalid type", cause).At("schema/point.yml:2")

		assert.Equal(t, "schema/point.yml:2: Point.X: invalid type: underlying error", err.Error())
	})

	t.Run("Error message without position", func(t *testing.T) {
		err := NewSchemaError("Point", "X", "invalid type", nil)
		assert.Equal(t, "typestate: Point.X: invalid type", err.Error())
	})

	t.Run("Error message with record only", func(t *testing.T) {
		err := &SchemaError{Record: "Point"}
		assert.Equal(t, "typestate: Point: invalid declaration", err.Error())
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewSchemaError("Point", "", "", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("Is matches ErrInvalidSchema", func(t *testing.T) {
		err := NewSchemaError("Point", "", "", nil)
		assert.True(t, err.Is(ErrInvalidSchema))
		assert.True(t, errors.Is(err, ErrInvalidSchema))
	})

	t.Run("IsSchemaError helper", func(t *testing.T) {
		err := NewSchemaError("Point", "X", "test", nil)
		assert.True(t, IsSchemaError(err))
		assert.True(t, IsSchemaError(errors.Join(errors.New("other"), err)))
		assert.False(t, IsSchemaError(errors.New("other")))
	})

	t.Run("unsupported matches both sentinels", func(t *testing.T) {
		err := unsupported("Point", "Token", "asynchronous default production")
		assert.True(t, errors.Is(err, ErrInvalidSchema))
		assert.True(t, errors.Is(err, ErrUnsupported))
		assert.Contains(t, err.Error(), "unsupported: asynchronous default production")
	})

	t.Run("records carry their position", func(t *testing.T) {
		rec := schema.Build("Point").Fields(
			field.New("x", "int").Hidden(),
			field.New("Y", "int").DefaultAsync("f"),
		).Record()
		rec.Pos = "schema/point.yml:2"
		_, err := NewRecord(nil, rec)
		require.Error(t, err)

		errs := SchemaErrors(err)
		require.Len(t, errs, 2)
		for _, e := range errs {
			assert.Equal(t, "schema/point.yml:2", e.Pos)
			assert.Equal(t, "Point", e.Record)
		}
		assert.Equal(t, []string{"x", "Y"}, []string{errs[0].Field, errs[1].Field})
		assert.Contains(t, err.Error(), "schema/point.yml:2: Point.x: hidden field requires a default")
	})

	t.Run("SchemaErrors", func(t *testing.T) {
		a := NewSchemaError("A", "", "a", nil)
		b := NewSchemaError("B", "", "b", nil)
		err := fmt.Errorf("load: %w", errors.Join(a, errors.New("other"), b))
		assert.Equal(t, []*SchemaError{a, b}, SchemaErrors(err))
		assert.Empty(t, SchemaErrors(errors.New("other")))
		assert.Empty(t, SchemaErrors(nil))
	})
}

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("Workers", -1, "workers cannot be negative")

		assert.Equal(t, "typestate: option Workers -1: workers cannot be negative", err.Error())
		assert.Equal(t, `typestate: option Features "setter/eager": unknown feature`, NewConfigError("Features", "setter/eager", "unknown feature").Error())
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("Package", nil, "cannot be empty")

		assert.Contains(t, err.Error(), "Package")
		assert.Contains(t, err.Error(), "cannot be empty")
		assert.Equal(t, "typestate: option Package: cannot be empty", err.Error())
	})

	t.Run("Is matches ErrMissingConfig", func(t *testing.T) {
		err := NewConfigError("Target", nil, "missing")
		assert.True(t, err.Is(ErrMissingConfig))
	})

	t.Run("IsConfigError helper", func(t *testing.T) {
		err := NewConfigError("Target", nil, "missing")
		assert.True(t, IsConfigError(err))
		assert.False(t, IsConfigError(errors.New("other")))
	})
}

func TestGenerationError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("write failed")
		err := NewGenerationError("write", "point_builder.go", "cannot write file", cause)

		assert.Equal(t, "typestate: write point_builder.go: cannot write file: write failed", err.Error())
	})

	t.Run("Unwrap and Is", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewGenerationError("format", "", "", cause)

		assert.True(t, errors.Is(err, cause))
		assert.True(t, errors.Is(err, ErrGenerationFailed))
		assert.True(t, IsGenerationError(err))
		assert.False(t, IsGenerationError(cause))
	})
}
