package worktree

import (
	"os"
	"path/filepath"

	"github.com/systemshift/pygit/pkg/index"
)

// Add stages relPath (or, if it names a directory, everything beneath it)
// per spec.md §4.5. "." means "everything under the working root". Files
// matched by the ignore matcher are skipped; a file whose content and mode
// already match its index entry is left untouched (idempotence).
func (w *WorkTree) Add(relPath string) error {
	abs := filepath.Join(w.Root, relPath)
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}

	if relPath == "." || info.IsDir() {
		return w.walkWorkingFiles(func(rel string, fi os.FileInfo) error {
			if relPath != "." && !withinDir(rel, relPath) {
				return nil
			}
			return w.addFile(rel)
		})
	}
	if w.Ignored != nil && w.Ignored.Match(relPath, false) {
		return nil
	}
	return w.addFile(relPath)
}

func withinDir(rel, dir string) bool {
	return rel == dir || len(rel) > len(dir) && rel[:len(dir)+1] == dir+"/"
}

func (w *WorkTree) addFile(relPath string) error {
	abs := filepath.Join(w.Root, relPath)
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	id, framed, err := hashFile(abs)
	if err != nil {
		return err
	}
	mode := fileMode(info)
	entry := index.Entry{
		ObjectID: id,
		Mtime:    info.ModTime().Unix(),
		Size:     info.Size(),
		Mode:     mode,
	}
	if existing, ok := w.Index.Entries[relPath]; ok && existing.ObjectID == entry.ObjectID && existing.Mode == entry.Mode {
		return nil // idempotent: content and mode unchanged since last add
	}
	if err := w.Store.Put(id, framed); err != nil {
		return err
	}
	w.Index.Set(relPath, entry)
	return nil
}
