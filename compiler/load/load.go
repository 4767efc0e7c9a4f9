// Package load loads record schemas from YAML, JSON and Go source.
//
// A YAML or JSON schema file holds a list of records:
//
//	imports:
//	  uuid: github.com/google/uuid
//	records:
//	  - name: Point
//	    params:
//	      - {name: T, default: float64}
//	    fields:
//	      - {name: X, type: T, infer: [T]}
//	      - {name: Label, type: string, default: '"origin"', setter: [value, lazy]}
//
// Type, default and validator values are Go source text. A string literal
// default therefore keeps its Go quotes inside the YAML string.
//
// In Go source, a struct type annotated with the //typestate:builder
// directive is a record. Its fields are configured with the builder tag and
// type parameter defaults with the //typestate:default directive:
//
//	//typestate:builder
//	//typestate:default T=float64
//	type Point[T any] struct {
//		X     T      `builder:"infer=T"`
//		Label string `builder:"default=\"origin\"; setter=value|lazy"`
//	}
package load

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/syssam/typestate/schema"
)

// Config holds the configuration for loading schemas.
type Config struct {
	// Paths lists schema files, directories or Go package patterns.
	Paths []string
	// BuildFlags are passed to the Go build system when loading packages.
	BuildFlags []string
}

// ErrNoRecords is returned when the given paths declare no record.
var ErrNoRecords = errors.New("load: no records found")

// Load loads the records of all paths in order. A directory contributes
// its YAML and JSON files in lexical order, followed by the records of
// its Go package. A path that does not exist is treated as a Go package
// pattern.
func (c *Config) Load() ([]*schema.Record, error) {
	var recs []*schema.Record
	for _, p := range c.Paths {
		loaded, err := c.load(p)
		if err != nil {
			return nil, err
		}
		recs = append(recs, loaded...)
	}
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	return recs, nil
}

func (c *Config) load(path string) ([]*schema.Record, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return c.loadPackages(path)
	case err != nil:
		return nil, fmt.Errorf("load %s: %w", path, err)
	case !info.IsDir():
		return c.loadFile(path)
	}
	files, hasGo, err := schemaFiles(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	var recs []*schema.Record
	for _, f := range files {
		loaded, err := c.loadFile(f)
		if err != nil {
			return nil, err
		}
		recs = append(recs, loaded...)
	}
	if hasGo {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		loaded, err := c.loadPackages(abs)
		if err != nil {
			return nil, err
		}
		recs = append(recs, loaded...)
	}
	return recs, nil
}

func (c *Config) loadFile(path string) ([]*schema.Record, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		return loadYAML(path)
	case ".json":
		return loadJSON(path)
	case ".go":
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		return c.loadPackages("file=" + abs)
	default:
		return nil, fmt.Errorf("load %s: unsupported schema file extension %q", path, ext)
	}
}

// schemaFiles returns the YAML and JSON files of dir, and whether dir
// holds non-test Go files.
func schemaFiles(dir string) (files []string, hasGo bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, false, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yml", ".yaml", ".json":
			files = append(files, filepath.Join(dir, name))
		case ".go":
			if !strings.HasSuffix(name, "_test.go") {
				hasGo = true
			}
		}
	}
	sort.Strings(files)
	return files, hasGo, nil
}
