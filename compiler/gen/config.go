package gen

import (
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// RuntimePkg is the import path of the runtime package imported by
	// generated builders.
	RuntimePkg = "github.com/syssam/typestate"

	// DefaultHeader is the header comment of every generated file.
	DefaultHeader = "Code generated by typestate. DO NOT EDIT."
)

// Config holds the global configuration of a generation run.
type Config struct {
	// Target is the directory generated files are written to.
	Target string
	// Package is the import path of the generated package. Optional; when
	// set, its last element is the default package name.
	Package string
	// PkgName overrides the package clause of generated files.
	PkgName string
	// Header is the header comment. Empty means DefaultHeader.
	Header string
	// Features are the enabled feature flags.
	Features []Feature
	// Workers bounds the number of files generated in parallel.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int
	// Runtime overrides the import path of the runtime package.
	Runtime string
	// Logger receives generation progress. Nil means slog.Default().
	Logger *slog.Logger
}

// PackageName returns the package clause name of generated files.
func (c *Config) PackageName() string {
	switch {
	case c.PkgName != "":
		return c.PkgName
	case c.Package != "":
		return sanitizePkg(path.Base(c.Package))
	case c.Target != "":
		abs, err := filepath.Abs(c.Target)
		if err == nil {
			return sanitizePkg(filepath.Base(abs))
		}
		return sanitizePkg(filepath.Base(c.Target))
	default:
		return "main"
	}
}

// HeaderComment returns the header comment of generated files.
func (c *Config) HeaderComment() string {
	if c.Header == "" {
		return DefaultHeader
	}
	return strings.TrimPrefix(c.Header, "// ")
}

// RuntimePath returns the import path of the runtime package.
func (c *Config) RuntimePath() string {
	if c.Runtime == "" {
		return RuntimePkg
	}
	return c.Runtime
}

// WorkerCount returns the effective number of parallel workers.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// FeatureEnabled reports if the given feature name is enabled.
// It's exported to be used by the emitter packages.
func (c *Config) FeatureEnabled(name string) (bool, error) {
	for _, f := range AllFeatures {
		if name == f.Name {
			for _, e := range c.Features {
				if e.Name == f.Name {
					return true, nil
				}
			}
			return f.Default, nil
		}
	}
	return false, fmt.Errorf("unexpected feature name %q", name)
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// sanitizePkg turns a directory name into a valid package name.
func sanitizePkg(name string) string {
	name = strings.ToLower(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_', r >= '0' && r <= '9' && b.Len() > 0:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "main"
	}
	return b.String()
}
