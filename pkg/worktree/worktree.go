// Package worktree reconciles the working directory against the staging
// index and the tracking ledger: add, status, diff, and checkout. It
// generalizes the teacher's Repository.Add/Status (pkg/repo/repository.go)
// and CheckoutBranch (pkg/repo/branch.go) onto the real object model.
package worktree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemshift/pygit/pkg/ignore"
	"github.com/systemshift/pygit/pkg/index"
	"github.com/systemshift/pygit/pkg/objects"
	"github.com/systemshift/pygit/pkg/store"
	"github.com/systemshift/pygit/pkg/tracking"
)

// WorkTree binds the working directory to the index, tracking ledger, and
// object store it reconciles against.
type WorkTree struct {
	Root    string
	Store   *store.Store
	Index   *index.Index
	Ledger  *tracking.Ledger
	Ignored *ignore.Matcher
}

// relPath converts an absolute path under Root to a POSIX-style
// working-tree-relative path.
func (w *WorkTree) relPath(abs string) (string, error) {
	rel, err := filepath.Rel(w.Root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func fileMode(info os.FileInfo) objects.Mode {
	if info.Mode()&0o111 != 0 {
		return objects.ModeExec
	}
	return objects.ModeFile
}

// hashFile reads and frames path's content as a blob, without storing it.
func hashFile(path string) (objects.ID, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("worktree: read %s: %w", path, err)
	}
	id, framed := objects.Blob{Data: data}.Frame()
	return id, framed, nil
}

// ErrDirtyWorkingTree is returned by Checkout when switching would discard
// uncommitted changes (spec.md §4.6/§7).
type ErrDirtyWorkingTree struct {
	Paths []string
}

func (e *ErrDirtyWorkingTree) Error() string {
	return fmt.Sprintf("worktree: uncommitted changes would be overwritten: %s", strings.Join(e.Paths, ", "))
}

// walkWorkingFiles enumerates every non-ignored, non-metadata file under
// Root, yielding working-tree-relative POSIX paths.
func (w *WorkTree) walkWorkingFiles(fn func(relPath string, info os.FileInfo) error) error {
	return filepath.Walk(w.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := w.relPath(path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if w.Ignored != nil && w.Ignored.Match(rel, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		return fn(rel, info)
	})
}
