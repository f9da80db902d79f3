package main

import (
	"errors"

	"github.com/systemshift/pygit/pkg/commit"
	"github.com/systemshift/pygit/pkg/config"
	"github.com/systemshift/pygit/pkg/lock"
	"github.com/systemshift/pygit/pkg/refs"
	"github.com/systemshift/pygit/pkg/repo"
	"github.com/systemshift/pygit/pkg/store"
	"github.com/systemshift/pygit/pkg/wire"
	"github.com/systemshift/pygit/pkg/worktree"
)

// exitCodeFor maps an operation error to the exit code taxonomy of
// spec.md §6.7: 0 success (never reached here), 1 user-visible failure,
// 2 usage error, 3 internal/corruption error.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var usage *usageError
	if errors.As(err, &usage) {
		return 2
	}
	switch {
	case errors.Is(err, store.ErrCorrupt):
		return 3
	case errors.Is(err, store.ErrNotFound):
		return 3
	case errors.Is(err, repo.ErrNotARepository):
		return 1
	case errors.Is(err, repo.ErrAlreadyExists):
		return 1
	case errors.Is(err, lock.ErrLocked):
		return 1
	case errors.Is(err, refs.ErrNotFound):
		return 1
	case errors.Is(err, commit.ErrEmptyCommit), errors.Is(err, commit.ErrNoHead):
		return 1
	case errors.Is(err, config.ErrIdentityMissing):
		return 1
	case errors.Is(err, wire.ErrNonFastForward):
		return 1
	}
	var dirty *worktree.ErrDirtyWorkingTree
	if errors.As(err, &dirty) {
		return 1
	}
	var proto *wire.ErrProtocolViolation
	if errors.As(err, &proto) {
		return 3
	}
	return 1
}

// usageError marks a CLI argument-parsing failure distinct from a
// runtime/domain failure (exit code 2 vs 1).
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func newUsageError(msg string) error { return &usageError{msg: msg} }
