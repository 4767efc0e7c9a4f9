package gen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// manifestVersion is bumped when the manifest encoding changes. A manifest
// of another version is ignored.
const manifestVersion = 1

// Manifest records the content hash of every file written by a run.
type Manifest struct {
	Version int               `msgpack:"v"`
	Files   map[string]uint64 `msgpack:"files"`
}

// contentHash returns the hash stored in the manifest for a file content.
func contentHash(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// LoadManifest reads the manifest of the output directory. A missing or
// outdated manifest yields an empty one.
func LoadManifest(dir string) (*Manifest, error) {
	m := &Manifest{Version: manifestVersion, Files: make(map[string]uint64)}
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return m, nil
	case err != nil:
		return nil, NewGenerationError("manifest", ManifestFile, "read", err)
	}
	var prev Manifest
	if err := msgpack.Unmarshal(data, &prev); err != nil {
		return nil, NewGenerationError("manifest", ManifestFile, "decode", err)
	}
	if prev.Version != manifestVersion || prev.Files == nil {
		return m, nil
	}
	m.Files = prev.Files
	return m, nil
}

// Save writes the manifest to the output directory.
func (m *Manifest) Save(dir string) error {
	data, err := msgpack.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return writeAtomic(filepath.Join(dir, ManifestFile), data)
}

// Unchanged reports whether the file was recorded with the same hash.
// A nil manifest reports false.
func (m *Manifest) Unchanged(name string, sum uint64) bool {
	if m == nil {
		return false
	}
	prev, ok := m.Files[name]
	return ok && prev == sum
}

// Stale returns the recorded files missing from current, sorted.
func (m *Manifest) Stale(current map[string]uint64) []string {
	if m == nil {
		return nil
	}
	var stale []string
	for name := range m.Files {
		if _, ok := current[name]; !ok && filepath.IsLocal(name) {
			stale = append(stale, name)
		}
	}
	sort.Strings(stale)
	return stale
}
