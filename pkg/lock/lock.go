// Package lock enforces the single-writer policy of spec.md §5 with a file
// lock under the repository's metadata directory, using
// github.com/gofrs/flock (a dependency the corpus's bufbuild/buf also
// carries for this exact purpose). The teacher has no locking at all;
// concurrent CLI invocations would silently race.
package lock

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another writer already holds the repo lock.
var ErrLocked = errors.New("lock: repository is locked by another process")

// RepoLock guards mutating operations (add, commit, checkout, pull) for
// the duration of the command.
type RepoLock struct {
	fl *flock.Flock
}

// Acquire takes an exclusive, non-blocking lock on <metaDir>/lock. Callers
// must defer Release.
func Acquire(metaDir string) (*RepoLock, error) {
	fl := flock.New(filepath.Join(metaDir, "lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock: acquire: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &RepoLock{fl: fl}, nil
}

// Release drops the lock.
func (l *RepoLock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("lock: release: %w", err)
	}
	return nil
}
