package commit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/systemshift/pygit/pkg/index"
	"github.com/systemshift/pygit/pkg/objects"
	"github.com/systemshift/pygit/pkg/refs"
	"github.com/systemshift/pygit/pkg/store"
	"github.com/systemshift/pygit/pkg/tracking"
)

func newHarness(t *testing.T) (*store.Store, *index.Index, *tracking.Ledger, *refs.Store) {
	t.Helper()
	meta := t.TempDir()
	st := store.New(filepath.Join(meta, "objects"))
	idx, err := index.Open(filepath.Join(meta, "index.yaml"))
	require.NoError(t, err)
	ledger, err := tracking.Open(filepath.Join(meta, "tracking.yaml"))
	require.NoError(t, err)
	rf := refs.New(meta)
	require.NoError(t, rf.SetHeadSymbolic("master"))
	return st, idx, ledger, rf
}

// TestFirstCommitScenarioS1 reproduces spec.md's S1 scenario: a fixed
// author/committer and timestamp must yield a stable, reproducible
// commit id.
func TestFirstCommitScenarioS1(t *testing.T) {
	t.Setenv("PYGIT_AUTHOR_NAME", "Alice")
	t.Setenv("PYGIT_AUTHOR_EMAIL", "a@x")

	st, idx, ledger, rf := newHarness(t)
	blobID, err := st.PutBlob(objects.Blob{Data: []byte("hello\n")})
	require.NoError(t, err)
	idx.Set("a.txt", index.Entry{ObjectID: blobID, Mode: objects.ModeFile})

	id1, err := Create(Options{
		Store: st, Index: idx, Ledger: ledger, Refs: rf,
		Branch: "master", Message: "init", Now: time.Unix(1700000000, 0).UTC(),
	})
	require.NoError(t, err)

	// Rebuilding from scratch with identical inputs must reproduce the
	// exact same id (invariant 1: deterministic hashing).
	st2, idx2, ledger2, rf2 := newHarness(t)
	blobID2, err := st2.PutBlob(objects.Blob{Data: []byte("hello\n")})
	require.NoError(t, err)
	idx2.Set("a.txt", index.Entry{ObjectID: blobID2, Mode: objects.ModeFile})
	id2, err := Create(Options{
		Store: st2, Index: idx2, Ledger: ledger2, Refs: rf2,
		Branch: "master", Message: "init", Now: time.Unix(1700000000, 0).UTC(),
	})
	require.NoError(t, err)

	require.Equal(t, id1, id2)
}

func TestCreateRejectsEmptyIndex(t *testing.T) {
	st, idx, ledger, rf := newHarness(t)
	_, err := Create(Options{
		Store: st, Index: idx, Ledger: ledger, Refs: rf,
		Branch: "master", Message: "m", Now: time.Now(),
	})
	require.ErrorIs(t, err, ErrEmptyCommit)
}

func TestCreateRequiresIdentity(t *testing.T) {
	st, idx, ledger, rf := newHarness(t)
	blobID, err := st.PutBlob(objects.Blob{Data: []byte("x")})
	require.NoError(t, err)
	idx.Set("a.txt", index.Entry{ObjectID: blobID, Mode: objects.ModeFile})

	_, err = Create(Options{
		Store: st, Index: idx, Ledger: ledger, Refs: rf,
		Branch: "master", Message: "m", Now: time.Now(),
	})
	require.Error(t, err)
}

func TestIndexNotClearedAfterCommit(t *testing.T) {
	t.Setenv("PYGIT_AUTHOR_NAME", "Alice")
	t.Setenv("PYGIT_AUTHOR_EMAIL", "a@x")
	st, idx, ledger, rf := newHarness(t)
	blobID, err := st.PutBlob(objects.Blob{Data: []byte("hello\n")})
	require.NoError(t, err)
	idx.Set("a.txt", index.Entry{ObjectID: blobID, Mode: objects.ModeFile})

	_, err = Create(Options{
		Store: st, Index: idx, Ledger: ledger, Refs: rf,
		Branch: "master", Message: "init", Now: time.Unix(1700000000, 0).UTC(),
	})
	require.NoError(t, err)

	// Documented divergence: the staging index keeps its entries.
	require.Contains(t, idx.Entries, "a.txt")
}

func TestBuildTreeGroupsNestedDirectories(t *testing.T) {
	t.Setenv("PYGIT_AUTHOR_NAME", "Alice")
	t.Setenv("PYGIT_AUTHOR_EMAIL", "a@x")
	st, idx, ledger, rf := newHarness(t)
	rootBlob, err := st.PutBlob(objects.Blob{Data: []byte("root")})
	require.NoError(t, err)
	nestedBlob, err := st.PutBlob(objects.Blob{Data: []byte("nested")})
	require.NoError(t, err)
	idx.Set("a.txt", index.Entry{ObjectID: rootBlob, Mode: objects.ModeFile})
	idx.Set("src/app.py", index.Entry{ObjectID: nestedBlob, Mode: objects.ModeFile})

	id, err := Create(Options{
		Store: st, Index: idx, Ledger: ledger, Refs: rf,
		Branch: "master", Message: "init", Now: time.Unix(1700000000, 0).UTC(),
	})
	require.NoError(t, err)

	c, err := st.GetCommit(id)
	require.NoError(t, err)
	tree, err := st.GetTree(c.Tree)
	require.NoError(t, err)

	var names []string
	var subdirID objects.ID
	for _, e := range tree.Entries {
		names = append(names, e.Name)
		if e.Name == "src" {
			require.Equal(t, objects.ModeDir, e.Mode)
			subdirID = e.Target
		}
	}
	require.ElementsMatch(t, []string{"a.txt", "src"}, names)

	subtree, err := st.GetTree(subdirID)
	require.NoError(t, err)
	require.Len(t, subtree.Entries, 1)
	require.Equal(t, "app.py", subtree.Entries[0].Name)
}
