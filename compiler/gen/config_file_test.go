package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		path := writeConfig(t, `
schema:
  - ./schema
  - /abs/records.yml
target: ./geo
package: github.com/acme/project/geo
package_name: shapes
header: "// Code generated by shapes. DO NOT EDIT."
features: [setter/strict, manifest]
workers: 3
`)
		fc, err := LoadConfigFile(path)
		require.NoError(t, err)
		dir := filepath.Dir(path)
		assert.Equal(t, []string{filepath.Join(dir, "schema"), "/abs/records.yml"}, fc.SchemaPaths())

		cfg, err := NewConfig(fc.Options()...)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "geo"), cfg.Target)
		assert.Equal(t, "github.com/acme/project/geo", cfg.Package)
		assert.Equal(t, "shapes", cfg.PackageName())
		assert.Equal(t, "Code generated by shapes. DO NOT EDIT.", cfg.HeaderComment())
		assert.Equal(t, 3, cfg.WorkerCount())
		on, err := cfg.FeatureEnabled(FeatureManifest.Name)
		require.NoError(t, err)
		assert.True(t, on)
	})
	t.Run("expands environment variables", func(t *testing.T) {
		t.Setenv("TYPESTATE_TARGET", "/tmp/out")
		fc, err := LoadConfigFile(writeConfig(t, "schema: [./schema]\ntarget: ${TYPESTATE_TARGET}\n"))
		require.NoError(t, err)
		assert.Equal(t, "/tmp/out", fc.Target)
	})
	t.Run("unknown keys are rejected", func(t *testing.T) {
		_, err := LoadConfigFile(writeConfig(t, "schema: [./schema]\noutput: json\n"))
		require.Error(t, err)
	})
	t.Run("schema is required", func(t *testing.T) {
		_, err := LoadConfigFile(writeConfig(t, "target: ./geo\n"))
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
	t.Run("unknown feature", func(t *testing.T) {
		fc, err := LoadConfigFile(writeConfig(t, "schema: [./schema]\nfeatures: [setter/eager]\n"))
		require.NoError(t, err)
		_, err = NewConfig(fc.Options()...)
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestFeatures(t *testing.T) {
	t.Run("by name", func(t *testing.T) {
		for _, f := range AllFeatures {
			got, ok := FeatureByName(f.Name)
			require.True(t, ok)
			assert.Equal(t, f.Name, got.Name)
			assert.NotEmpty(t, f.Description)
		}
		_, ok := FeatureByName("privacy")
		assert.False(t, ok)
	})
	t.Run("stages", func(t *testing.T) {
		assert.Equal(t, "beta", FeatureStrictSetters.Stage.String())
		assert.Equal(t, "stable", FeatureRecordStruct.Stage.String())
		assert.Equal(t, "experimental", FeatureManifest.Stage.String())
		assert.Equal(t, "unknown", FeatureStage(0).String())
	})
	t.Run("comma separated names", func(t *testing.T) {
		cfg, err := NewConfig(WithFeatureNames("setter/strict, record/struct"))
		require.NoError(t, err)
		assert.Len(t, cfg.Features, 2)
	})
	t.Run("cleanup of disabled features", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "point_builder.go"), nil, 0o644))
		require.NoError(t, cleanupFeatures(&Config{Target: dir}))
		assert.NoFileExists(t, filepath.Join(dir, ManifestFile))
		assert.FileExists(t, filepath.Join(dir, "point_builder.go"))

		require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), nil, 0o644))
		require.NoError(t, cleanupFeatures(&Config{Target: dir, Features: []Feature{FeatureManifest}}))
		assert.FileExists(t, filepath.Join(dir, ManifestFile))
	})
}
