package worktree

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/systemshift/pygit/pkg/objects"
	"github.com/systemshift/pygit/pkg/refs"
	"github.com/systemshift/pygit/pkg/store"
)

// flattenTree recursively lists every blob path in a tree, keyed by
// working-tree-relative POSIX path.
func flattenTree(st *store.Store, root objects.ID) (map[string]objects.ID, error) {
	out := make(map[string]objects.ID)
	if root.Empty() {
		return out, nil
	}
	var walk func(prefix string, id objects.ID) error
	walk = func(prefix string, id objects.ID) error {
		t, err := st.GetTree(id)
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
				out[full] = e.Target
			}
		}
		return nil
	}
	if err := walk("", root); err != nil {
		return nil, err
	}
	return out, nil
}

// Checkout switches the working directory, HEAD, index, and tracking
// ledger to branch. It refuses (ErrDirtyWorkingTree) when a path that
// differs between the current and target trees has uncommitted working
// changes, per spec.md §4.6.
func (w *WorkTree) Checkout(refStore *refs.Store, branch string) error {
	targetCommitID, err := refStore.ReadBranch(branch)
	if err != nil {
		return fmt.Errorf("worktree: resolve branch %q: %w", branch, err)
	}
	commit, err := w.Store.GetCommit(targetCommitID)
	if err != nil {
		return err
	}
	targetFiles, err := flattenTree(w.Store, commit.Tree)
	if err != nil {
		return err
	}

	if err := w.assertClean(targetFiles); err != nil {
		return err
	}

	// Remove working-tree files tracked by the old ledger but absent from
	// the target tree.
	for path := range w.Ledger.Paths {
		if _, stillPresent := targetFiles[path]; !stillPresent {
			abs := filepath.Join(w.Root, path)
			if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("worktree: remove %s: %w", path, err)
			}
		}
	}

	for path, id := range targetFiles {
		blob, err := w.Store.GetBlob(id)
		if err != nil {
			return err
		}
		abs := filepath.Join(w.Root, path)
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return fmt.Errorf("worktree: create dir for %s: %w", path, err)
		}
		if err := os.WriteFile(abs, blob.Data, 0o644); err != nil {
			return fmt.Errorf("worktree: write %s: %w", path, err)
		}
	}

	if err := w.Ledger.ReplaceFromTree(w.Store.GetTree, commit.Tree); err != nil {
		return err
	}
	w.Index.Clear()

	if err := refStore.SetHeadSymbolic(branch); err != nil {
		return err
	}
	if err := w.Ledger.Save(); err != nil {
		return err
	}
	return w.Index.Save()
}

// assertClean refuses the checkout if any path whose target-tree content
// differs from its current-tree content also has uncommitted changes on
// disk relative to the current ledger.
func (w *WorkTree) assertClean(targetFiles map[string]objects.ID) error {
	var dirty []string
	touched := make(map[string]struct{}, len(targetFiles)+len(w.Ledger.Paths))
	for p := range targetFiles {
		touched[p] = struct{}{}
	}
	for p := range w.Ledger.Paths {
		touched[p] = struct{}{}
	}
	for path := range touched {
		curID, curTracked := w.Ledger.Paths[path]
		newID, inTarget := targetFiles[path]
		if curTracked && inTarget && curID == newID {
			continue // unaffected by the switch
		}
		abs := filepath.Join(w.Root, path)
		info, err := os.Stat(abs)
		if err != nil {
			continue // not present on disk, nothing to lose
		}
		if !curTracked {
			continue // untracked file is never considered dirty by checkout
		}
		_ = info
		diskID, _, err := hashFile(abs)
		if err != nil {
			return err
		}
		if diskID != curID {
			dirty = append(dirty, path)
		}
	}
	if len(dirty) > 0 {
		return &ErrDirtyWorkingTree{Paths: dirty}
	}
	return nil
}

// CreateBranchAt records a new branch ref pointing at commitID.
func CreateBranchAt(refStore *refs.Store, name string, commitID objects.ID) error {
	if refStore.BranchExists(name) {
		return fmt.Errorf("worktree: branch %q already exists", name)
	}
	return refStore.WriteBranch(name, commitID)
}
