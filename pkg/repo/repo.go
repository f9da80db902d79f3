// Package repo is the façade that wires the object store, ref store,
// staging index, tracking ledger, ignore matcher, and repo-level config
// into a single handle for one working directory. It plays the role of
// the teacher's pkg/repo/repository.go Repository type, rebuilt around
// the real object model instead of kit's flat JSON commit format.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/systemshift/pygit/pkg/commit"
	"github.com/systemshift/pygit/pkg/config"
	"github.com/systemshift/pygit/pkg/history"
	"github.com/systemshift/pygit/pkg/ignore"
	"github.com/systemshift/pygit/pkg/index"
	"github.com/systemshift/pygit/pkg/lock"
	"github.com/systemshift/pygit/pkg/objects"
	"github.com/systemshift/pygit/pkg/refs"
	"github.com/systemshift/pygit/pkg/remote"
	"github.com/systemshift/pygit/pkg/store"
	"github.com/systemshift/pygit/pkg/tracking"
	"github.com/systemshift/pygit/pkg/wire"
	"github.com/systemshift/pygit/pkg/worktree"
)

// MetaDirName is the repository metadata directory name, analogous to
// the teacher's ".kit".
const MetaDirName = ".pygit"

// ErrNotARepository is returned by Open when no metadata directory is
// found at root.
var ErrNotARepository = errors.New("repo: not a pygit repository")

// ErrAlreadyExists is returned by Initialize when root is already a
// repository.
var ErrAlreadyExists = errors.New("repo: repository already exists")

// Repository bundles every on-disk concern of one working directory.
type Repository struct {
	Root    string
	MetaDir string

	Store   *store.Store
	Refs    *refs.Store
	Index   *index.Index
	Ledger  *tracking.Ledger
	Ignored *ignore.Matcher
	Remotes *remote.Table
	Config  config.Core
}

func metaDir(root string) string { return filepath.Join(root, MetaDirName) }

func indexPath(meta string) string   { return filepath.Join(meta, "index.yaml") }
func ledgerPath(meta string) string  { return filepath.Join(meta, "tracking.yaml") }
func remotesPath(meta string) string { return filepath.Join(meta, "remotes.yaml") }
func configPath(meta string) string  { return filepath.Join(meta, "config") }
func objectsPath(meta string) string { return filepath.Join(meta, "objects") }

// Initialize creates a new repository at root: the metadata directory
// skeleton, an empty index and ledger, default config, and HEAD pointing
// at the configured default branch (which does not yet exist as a ref
// until the first commit).
func Initialize(root string) (*Repository, error) {
	meta := metaDir(root)
	if _, err := os.Stat(meta); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, root)
	}
	if err := os.MkdirAll(filepath.Join(meta, "refs", "heads"), 0o755); err != nil {
		return nil, fmt.Errorf("repo: create metadata dir: %w", err)
	}
	if err := os.MkdirAll(objectsPath(meta), 0o755); err != nil {
		return nil, fmt.Errorf("repo: create objects dir: %w", err)
	}

	cfg := config.DefaultCore()
	if err := config.Save(configPath(meta), cfg); err != nil {
		return nil, err
	}

	rf := refs.New(meta)
	if err := rf.SetHeadSymbolic(cfg.Remote.DefaultBranch); err != nil {
		return nil, err
	}

	idx, err := index.Open(indexPath(meta))
	if err != nil {
		return nil, err
	}
	if err := idx.Save(); err != nil {
		return nil, err
	}
	ledger, err := tracking.Open(ledgerPath(meta))
	if err != nil {
		return nil, err
	}
	if err := ledger.Save(); err != nil {
		return nil, err
	}
	remotes, err := remote.Open(remotesPath(meta))
	if err != nil {
		return nil, err
	}
	if err := remotes.Save(); err != nil {
		return nil, err
	}

	return Open(root)
}

// Open loads an existing repository rooted at root.
func Open(root string) (*Repository, error) {
	meta := metaDir(root)
	if _, err := os.Stat(meta); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, root)
		}
		return nil, err
	}

	cfg, err := config.Load(configPath(meta))
	if err != nil {
		return nil, err
	}
	idx, err := index.Open(indexPath(meta))
	if err != nil {
		return nil, err
	}
	ledger, err := tracking.Open(ledgerPath(meta))
	if err != nil {
		return nil, err
	}
	remotes, err := remote.Open(remotesPath(meta))
	if err != nil {
		return nil, err
	}
	ignored, err := ignore.Compile(root)
	if err != nil {
		return nil, err
	}

	return &Repository{
		Root:    root,
		MetaDir: meta,
		Store:   store.New(objectsPath(meta)),
		Refs:    refs.New(meta),
		Index:   idx,
		Ledger:  ledger,
		Ignored: ignored,
		Remotes: remotes,
		Config:  cfg,
	}, nil
}

// Discover walks upward from start looking for a metadata directory, the
// way most VCS CLIs resolve the repository root from a subdirectory.
func Discover(start string) (*Repository, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}
	for {
		if _, err := os.Stat(metaDir(dir)); err == nil {
			return Open(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, start)
		}
		dir = parent
	}
}

// Lock acquires the single-writer repository lock for the duration of a
// mutating command (spec.md §5).
func (r *Repository) Lock() (*lock.RepoLock, error) {
	return lock.Acquire(r.MetaDir)
}

// WorkTree returns the worktree.WorkTree view bound to this repository's
// store, index, ledger and ignore matcher.
func (r *Repository) WorkTree() *worktree.WorkTree {
	return &worktree.WorkTree{
		Root:    r.Root,
		Store:   r.Store,
		Index:   r.Index,
		Ledger:  r.Ledger,
		Ignored: r.Ignored,
	}
}

// SaveState persists the index and tracking ledger, the two pieces of
// mutable repository state most commands touch.
func (r *Repository) SaveState() error {
	if err := r.Index.Save(); err != nil {
		return err
	}
	return r.Ledger.Save()
}

// CurrentBranch resolves the branch HEAD symbolically points to.
func (r *Repository) CurrentBranch() (string, error) {
	return r.Refs.HeadBranch()
}

// Commit stages the current index into a new commit on the current
// branch, creating the branch ref if this is the repository's first
// commit.
func (r *Repository) Commit(message string) (objects.ID, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return "", commit.ErrNoHead
	}
	return commit.Create(commit.Options{
		Store:   r.Store,
		Index:   r.Index,
		Ledger:  r.Ledger,
		Refs:    r.Refs,
		Branch:  branch,
		Message: message,
		Now:     time.Now(),
	})
}

// Log walks the current branch's history, newest first, bounded to limit
// entries (limit <= 0 means unbounded).
func (r *Repository) Log(limit int) ([]history.Entry, error) {
	head, err := r.Refs.HeadCommit()
	if err != nil {
		return nil, err
	}
	return history.Walk(r.Store, head, limit)
}

// Verify walks the full object closure reachable from every branch ref
// and rehashes each object, surfacing storage corruption that individual
// Get calls would otherwise only find lazily (spec.md §4.10 supplement).
func (r *Repository) Verify() ([]objects.ID, error) {
	branches, err := r.Refs.ListBranches()
	if err != nil {
		return nil, err
	}
	var roots []objects.ID
	for _, b := range branches {
		id, err := r.Refs.ReadBranch(b)
		if err != nil {
			return nil, err
		}
		roots = append(roots, id)
	}
	ids, err := r.Store.Closure(roots)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, err := r.Store.Get(id); err != nil {
			return nil, fmt.Errorf("repo: verify %s: %w", id, err)
		}
	}
	return ids, nil
}

// RemoteAddr resolves a configured remote name to a dial address and
// repository name for the wire package.
func (r *Repository) RemoteAddr(name string) (addr, repoName string, err error) {
	raw, ok := r.Remotes.Remotes[name]
	if !ok {
		return "", "", fmt.Errorf("repo: remote %q not found", name)
	}
	parsed, err := remote.ParseURL(raw)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("%s:%s", parsed.Host, parsed.Port), parsed.Repo, nil
}

// AddRemote registers a new named remote and persists the remote table.
func (r *Repository) AddRemote(name, rawURL string) error {
	if err := r.Remotes.Add(name, rawURL); err != nil {
		return err
	}
	return r.Remotes.Save()
}

// ListRemotes returns the configured remote names, sorted.
func (r *Repository) ListRemotes() []string {
	return r.Remotes.List()
}

// CreateBranch records a new branch ref at the current HEAD commit.
func (r *Repository) CreateBranch(name string) error {
	head, err := r.Refs.HeadCommit()
	if err != nil {
		return err
	}
	return worktree.CreateBranchAt(r.Refs, name, head)
}

// DeleteBranch removes a branch ref, refusing to delete the branch HEAD
// currently points to (spec.md supplement: `pygit branch -d`).
func (r *Repository) DeleteBranch(name string) error {
	current, err := r.CurrentBranch()
	if err == nil && current == name {
		return fmt.Errorf("repo: cannot delete the currently checked-out branch %q", name)
	}
	return r.Refs.DeleteBranch(name)
}

// Checkout switches the working directory, HEAD, index, and ledger to an
// existing branch.
func (r *Repository) Checkout(branch string) error {
	return r.WorkTree().Checkout(r.Refs, branch)
}

// CheckoutNewBranch creates branch at the current HEAD commit and
// switches to it in one step (`pygit checkout -b`).
func (r *Repository) CheckoutNewBranch(branch string) error {
	if err := r.CreateBranch(branch); err != nil {
		return err
	}
	return r.Checkout(branch)
}

// Push sends the current branch's missing history to remoteName.
func (r *Repository) Push(remoteName, branch string) error {
	addr, repoName, err := r.RemoteAddr(remoteName)
	if err != nil {
		return err
	}
	return wire.Push(addr, repoName, branch, r.Store, r.Refs, wire.DefaultTimeout)
}

// Pull fetches and fast-forwards the current branch from remoteName.
func (r *Repository) Pull(remoteName, branch string) error {
	addr, repoName, err := r.RemoteAddr(remoteName)
	if err != nil {
		return err
	}
	return wire.Pull(addr, repoName, branch, r.Store, r.Refs, wire.DefaultTimeout)
}

// Clone fetches an entire repository fresh into a newly initialized
// directory at dst.
func Clone(rawURL, dst string) (*Repository, error) {
	parsed, err := remote.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	r, err := Initialize(dst)
	if err != nil {
		return nil, err
	}
	addr := fmt.Sprintf("%s:%s", parsed.Host, parsed.Port)
	result, err := wire.Clone(addr, parsed.Repo, r.Store, r.Refs, wire.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	r.Config.Remote.DefaultBranch = result.DefaultBranch
	if err := config.Save(configPath(r.MetaDir), r.Config); err != nil {
		return nil, err
	}
	if headCommit, err := r.Refs.HeadCommit(); err == nil && !headCommit.Empty() {
		if err := r.WorkTree().Checkout(r.Refs, result.DefaultBranch); err != nil {
			return nil, err
		}
	}
	return r, nil
}
