package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// DefaultConfigFile is the project file looked up by the CLI.
const DefaultConfigFile = "typestate.yml"

// FileConfig represents the project config file.
//
//	schema:
//	  - ./schema
//	target: ./geo
//	package: github.com/acme/project/geo
//	features: [setter/strict]
type FileConfig struct {
	// Schema lists the schema files or directories.
	Schema      []string `yaml:"schema"`
	Target      string   `yaml:"target"`
	Package     string   `yaml:"package"`
	PackageName string   `yaml:"package_name"`
	Header      string   `yaml:"header"`
	Features    []string `yaml:"features"`
	Workers     int      `yaml:"workers"`
	Runtime     string   `yaml:"runtime"`

	// dir is the directory of the config file. Relative paths are
	// resolved against it.
	dir string
}

// LoadConfigFile loads and parses the project config file. Environment
// variables in the file are expanded and unknown keys are rejected.
func LoadConfigFile(filename string) (*FileConfig, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}
	var c FileConfig
	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(content)))), yaml.DisallowUnknownField())
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("unable to parse config %s: %w", filename, err)
	}
	c.dir = filepath.Dir(filename)
	if len(c.Schema) == 0 {
		return nil, NewConfigError("schema", nil, "no schema paths in "+filename)
	}
	return &c, nil
}

// SchemaPaths returns the schema paths resolved against the config file.
func (c *FileConfig) SchemaPaths() []string {
	paths := make([]string, len(c.Schema))
	for i, p := range c.Schema {
		paths[i] = c.resolve(p)
	}
	return paths
}

// Options returns the generation options the file sets.
func (c *FileConfig) Options() []Option {
	var opts []Option
	if c.Target != "" {
		opts = append(opts, WithTarget(c.resolve(c.Target)))
	}
	if c.Package != "" {
		opts = append(opts, WithPackage(c.Package))
	}
	if c.PackageName != "" {
		opts = append(opts, WithPackageName(c.PackageName))
	}
	if c.Header != "" {
		opts = append(opts, WithHeader(c.Header))
	}
	if len(c.Features) > 0 {
		opts = append(opts, WithFeatureNames(c.Features...))
	}
	if c.Workers != 0 {
		opts = append(opts, WithWorkers(c.Workers))
	}
	if c.Runtime != "" {
		opts = append(opts, WithRuntimePackage(c.Runtime))
	}
	return opts
}

func (c *FileConfig) resolve(p string) string {
	if filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}
