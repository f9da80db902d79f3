// Package tracking implements the tracking ledger: the path -> object_id
// map reflecting the tree materialized by the currently checked-out
// commit (spec.md §3.7/§6.6). It has no teacher analogue — the teacher
// folds this into Repository.State.Tracked in memory only — so this is
// built directly from spec.md, persisted the same YAML way as the index
// for consistency.
package tracking

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/systemshift/pygit/pkg/objects"
)

// Ledger is the path -> object_id map of the checked-out tree.
type Ledger struct {
	Paths map[string]objects.ID `yaml:"paths"`
	path  string
}

func Open(path string) (*Ledger, error) {
	l := &Ledger{Paths: make(map[string]objects.ID), path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("tracking: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return l, nil
	}
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("tracking: parse %s: %w", path, err)
	}
	if l.Paths == nil {
		l.Paths = make(map[string]objects.ID)
	}
	l.path = path
	return l, nil
}

func (l *Ledger) Save() error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("tracking: marshal: %w", err)
	}
	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".tracking-*.tmp")
	if err != nil {
		return fmt.Errorf("tracking: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("tracking: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("tracking: rename temp: %w", err)
	}
	return nil
}

// ReplaceFromTree rebuilds the ledger to exactly the flattened contents of
// a tree (used by checkout), recursing into subtrees.
func (l *Ledger) ReplaceFromTree(resolve func(objects.ID) (objects.Tree, error), root objects.ID) error {
	paths := make(map[string]objects.ID)
	var walk func(prefix string, treeID objects.ID) error
	walk = func(prefix string, treeID objects.ID) error {
		t, err := resolve(treeID)
		if err != nil {
			return err
		}
		for _, e := range t.Entries {
			full := e.Name
			if prefix != "" {
				full = prefix + "/" + e.Name
			}
			if e.Mode == objects.ModeDir {
				if err := walk(full, e.Target); err != nil {
					return err
				}
			} else {
				paths[full] = e.Target
			}
		}
		return nil
	}
	if !root.Empty() {
		if err := walk("", root); err != nil {
			return err
		}
	}
	l.Paths = paths
	return nil
}
