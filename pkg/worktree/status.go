package worktree

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/systemshift/pygit/pkg/objects"
)

// Category is one of the five status classifications of spec.md §4.6.
type Category string

const (
	StagedNew        Category = "staged-new"
	StagedModified   Category = "staged-modified"
	UnstagedModified Category = "unstaged-modified"
	Deleted          Category = "deleted"
	Untracked        Category = "untracked"
)

// Entry is one path's status classification. A single path can appear
// under more than one Category at once — e.g. staged, then modified again
// on disk yields both staged-modified and unstaged-modified (spec.md §8
// scenario S3) — so Status returns a flat list, not a map.
type Entry struct {
	Path     string
	Category Category
}

// Status computes the union of index/ledger/working-tree paths and
// classifies each, per spec.md §4.6.
func (w *WorkTree) Status() ([]Entry, error) {
	paths := make(map[string]struct{})
	for p := range w.Index.Entries {
		paths[p] = struct{}{}
	}
	for p := range w.Ledger.Paths {
		paths[p] = struct{}{}
	}

	onDisk := make(map[string]os.FileInfo)
	if err := w.walkWorkingFiles(func(rel string, fi os.FileInfo) error {
		onDisk[rel] = fi
		paths[rel] = struct{}{}
		return nil
	}); err != nil {
		return nil, err
	}

	var out []Entry
	for p := range paths {
		cats, err := w.classify(p, onDisk[p])
		if err != nil {
			return nil, err
		}
		for _, c := range cats {
			out = append(out, Entry{Path: p, Category: c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (w *WorkTree) classify(path string, fi os.FileInfo) ([]Category, error) {
	idxEntry, inIndex := w.Index.Entries[path]
	ledgerID, inLedger := w.Ledger.Paths[path]
	onDisk := fi != nil

	var cats []Category

	if inIndex && !inLedger {
		cats = append(cats, StagedNew)
	}
	if inIndex && inLedger && idxEntry.ObjectID != ledgerID {
		cats = append(cats, StagedModified)
	}
	if inLedger && !onDisk {
		cats = append(cats, Deleted)
	}
	// unstaged-modified compares the working file against its most
	// specific recorded baseline: the staged blob if one exists,
	// otherwise the checked-out ledger blob. This is independent of the
	// staged-modified check above, so a path can be both (spec.md §8 S3).
	if onDisk && (inIndex || inLedger) {
		baseline := ledgerID
		if inIndex {
			baseline = idxEntry.ObjectID
		}
		unchanged := inIndex &&
			idxEntry.Size == fi.Size() && idxEntry.Mtime == fi.ModTime().Unix()
		if !unchanged {
			diskID, err := w.diskHash(path)
			if err != nil {
				return nil, err
			}
			if diskID != baseline {
				cats = append(cats, UnstagedModified)
			}
		}
	}
	if onDisk && !inLedger && !inIndex {
		cats = append(cats, Untracked)
	}
	return cats, nil
}

func (w *WorkTree) diskHash(path string) (objects.ID, error) {
	abs := filepath.Join(w.Root, path)
	id, _, err := hashFile(abs)
	return id, err
}
