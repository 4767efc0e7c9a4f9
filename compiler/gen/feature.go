package gen

import (
	"os"
	"path/filepath"
)

// ManifestFile is the name of the manifest written to the target
// directory when FeatureManifest is enabled.
const ManifestFile = ".typestate.manifest"

var (
	// FeatureStrictSetters emits a package-level Set<Record><Field> function
	// per value setter whose parameter type pins the field's slot to
	// typestate.Unset. Setting the same field twice through it does not
	// compile.
	//
	//	b := geo.SetPointX(geo.NewPoint(), 1)
	//	b = geo.SetPointX(b, 2) // compile error
	FeatureStrictSetters = Feature{
		Name:        "setter/strict",
		Stage:       Beta,
		Default:     false,
		Description: "Emits compile-time strict setter functions that reject setting a field twice",
	}

	// FeatureRecordStruct emits the record struct itself next to its builder.
	// Disable it when the record is declared by hand in Go source.
	FeatureRecordStruct = Feature{
		Name:        "record/struct",
		Stage:       Stable,
		Default:     false,
		Description: "Emits the record struct declaration in <record>.go",
	}

	// FeatureManifest records a content hash of every generated file and skips
	// rewriting files whose content did not change. Files of records that no
	// longer exist are removed.
	FeatureManifest = Feature{
		Name:        "manifest",
		Stage:       Experimental,
		Default:     false,
		Description: "Incremental writes tracked by a manifest in the target directory",
		cleanup: func(c *Config) error {
			return remove(c.Target, ManifestFile)
		},
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureStrictSetters,
		FeatureRecordStruct,
		FeatureManifest,
	}
)

// FeatureByName returns the feature with the given name.
func FeatureByName(name string) (Feature, bool) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development and may change or be removed.
	Experimental

	// Alpha features are complete, but their generated API may still change.
	Alpha

	// Beta features are documented and no breaking changes are expected.
	Beta

	// Stable features are Beta features that were running for a while.
	Stable
)

// String returns the stage name.
func (s FeatureStage) String() string {
	switch s {
	case Experimental:
		return "experimental"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Stable:
		return "stable"
	default:
		return "unknown"
	}
}

// A Feature of the typestate codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// cleanup used to cleanup all changes when a feature-flag is removed.
	// e.g. delete files from previous codegen runs.
	cleanup func(*Config) error
}

// cleanupFeatures runs the cleanup of every known feature that is disabled.
func cleanupFeatures(c *Config) error {
	for _, f := range AllFeatures {
		if f.cleanup == nil {
			continue
		}
		if on, _ := c.FeatureEnabled(f.Name); on {
			continue
		}
		if err := f.cleanup(c); err != nil {
			return NewGenerationError("cleanup", f.Name, "feature cleanup", err)
		}
	}
	return nil
}

// remove file (if exists) and its dir if it's empty.
func remove(dir, file string) error {
	if err := os.Remove(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	infos, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return os.Remove(dir)
	}
	return nil
}
