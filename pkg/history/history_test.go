package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/systemshift/pygit/pkg/objects"
	"github.com/systemshift/pygit/pkg/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(filepath.Join(t.TempDir(), "objects"))
}

func chainOfCommits(t *testing.T, st *store.Store, n int) []objects.ID {
	t.Helper()
	blobID, err := st.PutBlob(objects.Blob{Data: []byte("x")})
	require.NoError(t, err)
	treeID, err := st.PutTree(objects.Tree{Entries: []objects.TreeEntry{
		{Name: "a.txt", Mode: objects.ModeFile, Target: blobID},
	}})
	require.NoError(t, err)

	var ids []objects.ID
	var parent objects.ID
	for i := 0; i < n; i++ {
		c := objects.Commit{
			Tree:   treeID,
			Parent: parent,
			Author: objects.Identity{Name: "A", Email: "a@x", Unix: int64(1700000000 + i), TZOffset: "+0000"},
			Committer: objects.Identity{
				Name: "A", Email: "a@x", Unix: int64(1700000000 + i), TZOffset: "+0000",
			},
			Message: "msg",
		}
		id, err := st.PutCommit(c)
		require.NoError(t, err)
		ids = append(ids, id)
		parent = id
	}
	return ids
}

func TestWalkUnbounded(t *testing.T) {
	st := newTestStore(t)
	ids := chainOfCommits(t, st, 3)

	entries, err := Walk(st, ids[2], 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// newest first
	require.Equal(t, ids[2], entries[0].ID)
	require.Equal(t, ids[1], entries[1].ID)
	require.Equal(t, ids[0], entries[2].ID)
}

func TestWalkBounded(t *testing.T) {
	st := newTestStore(t)
	ids := chainOfCommits(t, st, 5)

	entries, err := Walk(st, ids[4], 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, ids[4], entries[0].ID)
	require.Equal(t, ids[3], entries[1].ID)
}

func TestWalkEmptyHead(t *testing.T) {
	st := newTestStore(t)
	entries, err := Walk(st, objects.ID(""), 0)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestIsAncestorTrue(t *testing.T) {
	st := newTestStore(t)
	ids := chainOfCommits(t, st, 3)

	ok, err := IsAncestor(st, ids[0], ids[2])
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = IsAncestor(st, ids[2], ids[2])
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIsAncestorFalse(t *testing.T) {
	st := newTestStore(t)
	idsA := chainOfCommits(t, st, 2)
	// chainOfCommits is deterministic, so a second call would rebuild idsA
	// exactly; derive an unrelated root commit by changing the message.
	root, err := st.GetCommit(idsA[0])
	require.NoError(t, err)
	root.Message = "unrelated"
	unrelated, err := st.PutCommit(root)
	require.NoError(t, err)

	ok, err := IsAncestor(st, idsA[1], unrelated)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIsAncestorEmptyCandidateIsAncestorOfEverything(t *testing.T) {
	st := newTestStore(t)
	ids := chainOfCommits(t, st, 1)

	ok, err := IsAncestor(st, objects.ID(""), ids[0])
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = IsAncestor(st, objects.ID(""), objects.ID(""))
	require.NoError(t, err)
	require.True(t, ok)
}
