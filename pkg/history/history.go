// Package history walks commit ancestry for `log` and for fast-forward
// checks in the push/pull protocol. Adapted from the teacher's
// pkg/repo/log.go, generalized onto the real commit-object chain.
package history

import (
	"github.com/systemshift/pygit/pkg/objects"
	"github.com/systemshift/pygit/pkg/store"
)

// Entry is one commit in a walked history.
type Entry struct {
	ID     objects.ID
	Commit objects.Commit
}

// Walk returns the commit chain starting at head and following Parent
// links, oldest commit last (newest first), optionally bounded to the
// first limit entries (limit <= 0 means unbounded).
func Walk(st *store.Store, head objects.ID, limit int) ([]Entry, error) {
	var out []Entry
	id := head
	for !id.Empty() {
		if limit > 0 && len(out) >= limit {
			break
		}
		c, err := st.GetCommit(id)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{ID: id, Commit: c})
		id = c.Parent
	}
	return out, nil
}

// IsAncestor reports whether candidate is ancestor-or-equal of tip by
// walking tip's parent chain. The DAG is linear (no merge commits) in this
// core, so this is a simple walk rather than a merge-base search.
func IsAncestor(st *store.Store, candidate, tip objects.ID) (bool, error) {
	if candidate.Empty() {
		return true, nil // the empty history is an ancestor of everything
	}
	id := tip
	for !id.Empty() {
		if id == candidate {
			return true, nil
		}
		c, err := st.GetCommit(id)
		if err != nil {
			return false, err
		}
		id = c.Parent
	}
	return false, nil
}
