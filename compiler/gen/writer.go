package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dave/jennifer/jen"
	"github.com/google/uuid"
	"golang.org/x/tools/imports"
)

// Writer formats generated files and writes them to the output directory.
// It is safe for concurrent use.
type Writer struct {
	outDir string

	// Metrics for performance monitoring
	mu      sync.Mutex
	metrics WriterMetrics

	// manifest is nil when incremental writes are disabled.
	manifest *Manifest
	written  map[string]uint64
}

// WriterMetrics tracks generation performance
type WriterMetrics struct {
	FilesGenerated int
	FilesUnchanged int
	FilesRemoved   int
	TotalBytes     int64
	RenderTime     int64 // nanoseconds
	FormatTime     int64 // nanoseconds
	WriteTime      int64 // nanoseconds
}

// NewWriter creates a writer for the output directory. With manifest set,
// the manifest of the previous run is loaded and files whose content did
// not change are not rewritten.
func NewWriter(outDir string, manifest bool) (*Writer, error) {
	w := &Writer{outDir: outDir, written: make(map[string]uint64)}
	if manifest {
		m, err := LoadManifest(outDir)
		if err != nil {
			return nil, err
		}
		w.manifest = m
	}
	return w, nil
}

// Metrics returns a snapshot of the generation metrics.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// Write renders, formats and writes one file. It reports whether the file
// was written; an unchanged file tracked by the manifest is skipped.
func (w *Writer) Write(name string, f *jen.File) (bool, error) {
	// 1. Render
	start := time.Now()
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return false, NewGenerationError("render", name, "", err)
	}
	rendered := time.Since(start)

	// 2. Format using goimports (removes unused imports and adds missing ones)
	start = time.Now()
	fullPath := filepath.Join(w.outDir, name)
	formatted, err := imports.Process(fullPath, buf.Bytes(), nil)
	if err != nil {
		// Write unformatted file for debugging (errors intentionally ignored as we're already in error state)
		debugPath := fullPath + ".error"
		_ = os.WriteFile(debugPath, buf.Bytes(), 0o644)
		return false, NewGenerationError("format", name, fmt.Sprintf("unformatted written to %s", debugPath), err)
	}
	formattedIn := time.Since(start)

	// 3. Skip unchanged files
	sum := contentHash(formatted)
	w.mu.Lock()
	w.written[name] = sum
	unchanged := w.manifest.Unchanged(name, sum) && fileExists(fullPath)
	w.mu.Unlock()
	if unchanged {
		w.record(func(m *WriterMetrics) {
			m.FilesUnchanged++
			m.RenderTime += int64(rendered)
			m.FormatTime += int64(formattedIn)
		})
		return false, nil
	}

	// 4. Write atomically
	start = time.Now()
	if err := writeAtomic(fullPath, formatted); err != nil {
		return false, NewGenerationError("write", name, "", err)
	}
	w.record(func(m *WriterMetrics) {
		m.FilesGenerated++
		m.TotalBytes += int64(len(formatted))
		m.RenderTime += int64(rendered)
		m.FormatTime += int64(formattedIn)
		m.WriteTime += int64(time.Since(start))
	})
	return true, nil
}

// Finish removes the files of the previous run that were not generated
// again and saves the manifest. It is a no-op without a manifest.
func (w *Writer) Finish() error {
	if w.manifest == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, name := range w.manifest.Stale(w.written) {
		if err := os.Remove(filepath.Join(w.outDir, name)); err != nil && !os.IsNotExist(err) {
			return NewGenerationError("cleanup", name, "remove stale file", err)
		}
		w.metrics.FilesRemoved++
	}
	w.manifest.Files = w.written
	if err := w.manifest.Save(w.outDir); err != nil {
		return NewGenerationError("manifest", ManifestFile, "", err)
	}
	return nil
}

func (w *Writer) record(fn func(*WriterMetrics)) {
	w.mu.Lock()
	fn(&w.metrics)
	w.mu.Unlock()
}

// writeAtomic writes data to a temporary file in the target directory and
// renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
