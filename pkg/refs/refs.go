// Package refs implements the reference store: branch tips and HEAD. It
// generalizes the teacher's resolveReference/updateReference pair (formerly
// pkg/repo/branch.go and commit.go) into a standalone store matching
// spec.md §3.5/§4.3.
package refs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemshift/pygit/pkg/objects"
)

var ErrNotFound = errors.New("refs: not found")

const headSymbolicPrefix = "ref: "

// Store manages refs/heads/<branch> files and HEAD under root (the .pygit
// metadata directory).
type Store struct {
	root string
}

func New(metaDir string) *Store {
	return &Store{root: metaDir}
}

func (s *Store) branchPath(name string) string {
	return filepath.Join(s.root, "refs", "heads", name)
}

func (s *Store) headPath() string {
	return filepath.Join(s.root, "HEAD")
}

// atomicWriteLine writes content plus a trailing newline via temp+rename.
func atomicWriteLine(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("refs: create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".ref-*.tmp")
	if err != nil {
		return fmt.Errorf("refs: create temp ref: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("refs: write temp ref: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("refs: rename temp ref: %w", err)
	}
	return nil
}

// ReadBranch returns the commit id a branch points to.
func (s *Store) ReadBranch(name string) (objects.ID, error) {
	data, err := os.ReadFile(s.branchPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: branch %q", ErrNotFound, name)
		}
		return "", fmt.Errorf("refs: read branch %q: %w", name, err)
	}
	return objects.ID(strings.TrimSpace(string(data))), nil
}

// WriteBranch atomically sets a branch's tip.
func (s *Store) WriteBranch(name string, id objects.ID) error {
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("refs: invalid branch name %q", name)
	}
	return atomicWriteLine(s.branchPath(name), string(id))
}

// DeleteBranch removes a branch ref file.
func (s *Store) DeleteBranch(name string) error {
	if err := os.Remove(s.branchPath(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: branch %q", ErrNotFound, name)
		}
		return fmt.Errorf("refs: delete branch %q: %w", name, err)
	}
	return nil
}

// BranchExists reports whether a branch ref file exists.
func (s *Store) BranchExists(name string) bool {
	_, err := os.Stat(s.branchPath(name))
	return err == nil
}

// ListBranches enumerates branch names under refs/heads.
func (s *Store) ListBranches() ([]string, error) {
	dir := filepath.Join(s.root, "refs", "heads")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("refs: list branches: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// SetHeadSymbolic points HEAD at a branch name (not yet requiring the
// branch to exist — checkout -b creates the branch first in the caller).
func (s *Store) SetHeadSymbolic(branch string) error {
	return atomicWriteLine(s.headPath(), headSymbolicPrefix+"refs/heads/"+branch)
}

// HeadBranch returns the branch name HEAD symbolically points to. In this
// core HEAD is always symbolic; a detached HEAD is reported as an error.
func (s *Store) HeadBranch() (string, error) {
	data, err := os.ReadFile(s.headPath())
	if err != nil {
		return "", fmt.Errorf("refs: read HEAD: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if !strings.HasPrefix(content, "ref: refs/heads/") {
		return "", fmt.Errorf("refs: HEAD is detached")
	}
	return strings.TrimPrefix(content, "ref: refs/heads/"), nil
}

// HeadCommit resolves HEAD through its single indirection to a commit id.
// On a freshly initialized repo with no commits yet, it returns "", nil.
func (s *Store) HeadCommit() (objects.ID, error) {
	branch, err := s.HeadBranch()
	if err != nil {
		return "", err
	}
	id, err := s.ReadBranch(branch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}
