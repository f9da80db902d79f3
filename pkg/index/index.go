// Package index implements the staging area: a persisted map of
// working-tree paths queued for the next commit, adapted from the teacher's
// pkg/repo/index.go. Persistence here uses YAML (gopkg.in/yaml.v3, the
// format bufbuild/buf also reaches for) instead of the teacher's JSON, to
// satisfy spec.md §6.4's "human-inspectable" requirement with a library
// already present in the corpus.
package index

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/systemshift/pygit/pkg/objects"
)

// Entry records the staged state of one path.
type Entry struct {
	ObjectID objects.ID   `yaml:"object_id"`
	Mtime    int64        `yaml:"mtime"` // unix seconds
	Size     int64        `yaml:"size"`
	Mode     objects.Mode `yaml:"mode"`
}

// Index is the in-memory staging snapshot, keyed by working-tree-relative
// POSIX path.
type Index struct {
	Entries map[string]Entry `yaml:"entries"`
	path    string
}

// Open loads the index file at path, or returns an empty Index if absent.
func Open(path string) (*Index, error) {
	idx := &Index{Entries: make(map[string]Entry), path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("index: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return idx, nil
	}
	if err := yaml.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("index: parse %s: %w", path, err)
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]Entry)
	}
	idx.path = path
	return idx, nil
}

// Save atomically rewrites the index file via temp+rename.
func (idx *Index) Save() error {
	data, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("index: marshal: %w", err)
	}
	dir := filepath.Dir(idx.path)
	tmp, err := os.CreateTemp(dir, ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("index: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("index: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, idx.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("index: rename temp: %w", err)
	}
	return nil
}

// Set inserts or updates a staged entry. Returns true if the call changed
// the index (false means the entry already matched byte-for-byte, making
// repeated adds idempotent per spec.md §4.5).
func (idx *Index) Set(path string, e Entry) bool {
	if existing, ok := idx.Entries[path]; ok && existing == e {
		return false
	}
	idx.Entries[path] = e
	return true
}

// Remove deletes a staged entry, reporting whether it was present.
func (idx *Index) Remove(path string) bool {
	if _, ok := idx.Entries[path]; !ok {
		return false
	}
	delete(idx.Entries, path)
	return true
}

// Clear empties the index. Per spec.md §4.7/§9, the commit engine
// deliberately does NOT call this after a commit — it is exposed for
// commands that explicitly want a fresh stage (e.g. a future `reset`).
func (idx *Index) Clear() {
	idx.Entries = make(map[string]Entry)
}

// Paths returns the staged paths in no particular order.
func (idx *Index) Paths() []string {
	paths := make([]string, 0, len(idx.Entries))
	for p := range idx.Entries {
		paths = append(paths, p)
	}
	return paths
}
