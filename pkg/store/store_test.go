package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/systemshift/pygit/pkg/objects"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "objects"))
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	id, framed := objects.Blob{Data: []byte("hello\n")}.Frame()

	require.NoError(t, s.Put(id, framed))
	require.True(t, s.Exists(id))

	got, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, framed, got)
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(objects.ID("0000000000000000000000000000000000000a"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetCorrupt(t *testing.T) {
	s := newTestStore(t)
	id, framed := objects.Blob{Data: []byte("hello\n")}.Frame()
	require.NoError(t, s.Put(id, framed))

	p, err := s.path(id)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p, []byte("tampered"), 0o644))

	_, err = s.Get(id)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestPutIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	id, framed := objects.Blob{Data: []byte("hello\n")}.Frame()
	require.NoError(t, s.Put(id, framed))
	require.NoError(t, s.Put(id, framed)) // second write is a no-op, not an error
	got, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, framed, got)
}

func TestClosureWalksCommitTreeBlobChain(t *testing.T) {
	s := newTestStore(t)
	blobID, err := s.PutBlob(objects.Blob{Data: []byte("a")})
	require.NoError(t, err)
	treeID, err := s.PutTree(objects.Tree{Entries: []objects.TreeEntry{
		{Name: "a.txt", Mode: objects.ModeFile, Target: blobID},
	}})
	require.NoError(t, err)
	commitID, err := s.PutCommit(objects.Commit{
		Tree:      treeID,
		Author:    objects.Identity{Name: "A", Email: "a@x", Unix: 1, TZOffset: "+0000"},
		Committer: objects.Identity{Name: "A", Email: "a@x", Unix: 1, TZOffset: "+0000"},
		Message:   "m",
	})
	require.NoError(t, err)

	ids, err := s.Closure([]objects.ID{commitID})
	require.NoError(t, err)
	require.ElementsMatch(t, []objects.ID{commitID, treeID, blobID}, ids)
}

func TestClosureUpToExcludesStop(t *testing.T) {
	s := newTestStore(t)
	treeID, err := s.PutTree(objects.Tree{})
	require.NoError(t, err)
	id := func(a objects.Identity) objects.Identity { return a }
	author := id(objects.Identity{Name: "A", Email: "a@x", Unix: 1, TZOffset: "+0000"})

	c1, err := s.PutCommit(objects.Commit{Tree: treeID, Author: author, Committer: author, Message: "1"})
	require.NoError(t, err)
	c2, err := s.PutCommit(objects.Commit{Tree: treeID, Parent: c1, Author: author, Committer: author, Message: "2"})
	require.NoError(t, err)

	ids, err := s.ClosureUpTo(c2, c1)
	require.NoError(t, err)
	require.Contains(t, ids, c2)
	require.NotContains(t, ids, c1)
}
