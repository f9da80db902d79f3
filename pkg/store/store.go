// Package store implements the content-addressed object database under
// .pygit/objects. It is adapted from the teacher's storeObject/readObject
// pair in pkg/repo/repository.go, generalized to the framed object format
// in package objects and made crash-safe with temp-file + rename writes.
package store

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/systemshift/pygit/pkg/objects"
)

var (
	// ErrNotFound is returned by Get (and the typed getters) for an absent
	// object.
	ErrNotFound = errors.New("store: object missing")
	// ErrCorrupt is returned when stored bytes rehash to a different id.
	ErrCorrupt = errors.New("store: object corrupt")
)

// Store is a single-writer, content-addressed object database rooted at
// <root>/objects.
type Store struct {
	root string
}

// New opens (without creating) the object store rooted at objectsDir.
func New(objectsDir string) *Store {
	return &Store{root: objectsDir}
}

func (s *Store) path(id objects.ID) (string, error) {
	hex := string(id)
	if len(hex) < 3 {
		return "", fmt.Errorf("store: malformed id %q", id)
	}
	return filepath.Join(s.root, hex[:2], hex[2:]), nil
}

// Put writes framed bytes to the store, deduplicating by content: if an
// object with this id already exists, the write is a no-op. Writes use
// temp-file + rename on the same filesystem for crash safety.
func (s *Store) Put(id objects.ID, framed []byte) error {
	dst, err := s.path(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dst); err == nil {
		return nil
	}
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create object dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "obj-*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp object: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(framed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: write temp object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: close temp object: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: rename temp object: %w", err)
	}
	return nil
}

// Get reads and validates an object's framed bytes. It fails with
// ErrNotFound if absent, ErrCorrupt if the stored bytes don't rehash to id.
func (s *Store) Get(id objects.ID) ([]byte, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("store: read object %s: %w", id, err)
	}
	sum := sha1.Sum(data)
	if objects.ID(hex.EncodeToString(sum[:])) != id {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, id)
	}
	return data, nil
}

// Exists reports whether an object with this id is present, without
// rehashing its content.
func (s *Store) Exists(id objects.ID) bool {
	p, err := s.path(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Iter enumerates every id currently in the store.
func (s *Store) Iter() ([]objects.ID, error) {
	var ids []objects.ID
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: list objects: %w", err)
	}
	for _, shard := range entries {
		if !shard.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(s.root, shard.Name()))
		if err != nil {
			return nil, fmt.Errorf("store: list shard %s: %w", shard.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			ids = append(ids, objects.ID(shard.Name()+f.Name()))
		}
	}
	return ids, nil
}

// PutBlob, PutTree and PutCommit are thin convenience wrappers that frame
// and store an object in one step, returning its id.
func (s *Store) PutBlob(b objects.Blob) (objects.ID, error) {
	id, framed := b.Frame()
	return id, s.Put(id, framed)
}

func (s *Store) PutTree(t objects.Tree) (objects.ID, error) {
	id, framed, err := t.Frame()
	if err != nil {
		return "", err
	}
	return id, s.Put(id, framed)
}

func (s *Store) PutCommit(c objects.Commit) (objects.ID, error) {
	id, framed := c.Frame()
	return id, s.Put(id, framed)
}

func (s *Store) GetBlob(id objects.ID) (objects.Blob, error) {
	framed, err := s.Get(id)
	if err != nil {
		return objects.Blob{}, err
	}
	kind, payload, err := objects.Unframe(framed)
	if err != nil {
		return objects.Blob{}, fmt.Errorf("%w: %s", ErrCorrupt, id)
	}
	if kind != objects.KindBlob {
		return objects.Blob{}, fmt.Errorf("store: %s is a %s, not a blob", id, kind)
	}
	return objects.Blob{Data: payload}, nil
}

func (s *Store) GetTree(id objects.ID) (objects.Tree, error) {
	framed, err := s.Get(id)
	if err != nil {
		return objects.Tree{}, err
	}
	kind, payload, err := objects.Unframe(framed)
	if err != nil {
		return objects.Tree{}, fmt.Errorf("%w: %s", ErrCorrupt, id)
	}
	if kind != objects.KindTree {
		return objects.Tree{}, fmt.Errorf("store: %s is a %s, not a tree", id, kind)
	}
	t, err := objects.ParseTree(payload)
	if err != nil {
		return objects.Tree{}, fmt.Errorf("%w: %s", ErrCorrupt, id)
	}
	return t, nil
}

func (s *Store) GetCommit(id objects.ID) (objects.Commit, error) {
	framed, err := s.Get(id)
	if err != nil {
		return objects.Commit{}, err
	}
	kind, payload, err := objects.Unframe(framed)
	if err != nil {
		return objects.Commit{}, fmt.Errorf("%w: %s", ErrCorrupt, id)
	}
	if kind != objects.KindCommit {
		return objects.Commit{}, fmt.Errorf("store: %s is a %s, not a commit", id, kind)
	}
	c, err := objects.ParseCommit(payload)
	if err != nil {
		return objects.Commit{}, fmt.Errorf("%w: %s", ErrCorrupt, id)
	}
	return c, nil
}

// Closure walks the transitive closure of objects reachable from roots
// (commit ids), following parent/tree/blob edges. The DAG is acyclic by
// construction (design note in DESIGN.md), so a seen-set is sufficient.
func (s *Store) Closure(roots []objects.ID) ([]objects.ID, error) {
	seen := make(map[objects.ID]struct{})
	var order []objects.ID
	var walkTree func(id objects.ID) error
	walkTree = func(id objects.ID) error {
		if _, ok := seen[id]; ok {
			return nil
		}
		seen[id] = struct{}{}
		order = append(order, id)
		t, err := s.GetTree(id)
		if err != nil {
			return err
		}
		for _, e := range t.Entries {
			if e.Mode == objects.ModeDir {
				if err := walkTree(e.Target); err != nil {
					return err
				}
			} else {
				if _, ok := seen[e.Target]; !ok {
					seen[e.Target] = struct{}{}
					order = append(order, e.Target)
				}
			}
		}
		return nil
	}
	for _, root := range roots {
		commitID := root
		for !commitID.Empty() {
			if _, ok := seen[commitID]; ok {
				break
			}
			seen[commitID] = struct{}{}
			order = append(order, commitID)
			c, err := s.GetCommit(commitID)
			if err != nil {
				return nil, err
			}
			if err := walkTree(c.Tree); err != nil {
				return nil, err
			}
			commitID = c.Parent
		}
	}
	return order, nil
}

// ClosureUpTo walks the commit chain from tip down to (but excluding)
// stopAt, collecting every commit/tree/blob id reachable along the way.
// Used by the push client to compute the minimal object set a
// fast-forward of the remote branch needs (spec.md §4.9). The history is
// linear in this core (no merge commits), so this is a straight walk
// rather than a merge-base search.
func (s *Store) ClosureUpTo(tip, stopAt objects.ID) ([]objects.ID, error) {
	seen := make(map[objects.ID]struct{})
	var order []objects.ID
	var walkTree func(id objects.ID) error
	walkTree = func(id objects.ID) error {
		if _, ok := seen[id]; ok {
			return nil
		}
		seen[id] = struct{}{}
		order = append(order, id)
		t, err := s.GetTree(id)
		if err != nil {
			return err
		}
		for _, e := range t.Entries {
			if e.Mode == objects.ModeDir {
				if err := walkTree(e.Target); err != nil {
					return err
				}
			} else if _, ok := seen[e.Target]; !ok {
				seen[e.Target] = struct{}{}
				order = append(order, e.Target)
			}
		}
		return nil
	}
	id := tip
	for !id.Empty() && id != stopAt {
		seen[id] = struct{}{}
		order = append(order, id)
		c, err := s.GetCommit(id)
		if err != nil {
			return nil, err
		}
		if err := walkTree(c.Tree); err != nil {
			return nil, err
		}
		id = c.Parent
	}
	return order, nil
}
