package refs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/systemshift/pygit/pkg/objects"
)

func TestWriteReadBranchRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	id := objects.ID("abc123")
	require.NoError(t, s.WriteBranch("master", id))

	got, err := s.ReadBranch("master")
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestReadMissingBranch(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.ReadBranch("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestWriteBranchRejectsPathSeparators(t *testing.T) {
	s := New(t.TempDir())
	err := s.WriteBranch("a/b", objects.ID("x"))
	require.Error(t, err)
}

func TestDeleteBranch(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.WriteBranch("master", objects.ID("x")))
	require.True(t, s.BranchExists("master"))

	require.NoError(t, s.DeleteBranch("master"))
	require.False(t, s.BranchExists("master"))

	err := s.DeleteBranch("master")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListBranches(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.WriteBranch("master", objects.ID("a")))
	require.NoError(t, s.WriteBranch("feature", objects.ID("b")))

	names, err := s.ListBranches()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"master", "feature"}, names)
}

func TestListBranchesEmptyRepoYieldsNoError(t *testing.T) {
	s := New(t.TempDir())
	names, err := s.ListBranches()
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestHeadSymbolicResolution(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.SetHeadSymbolic("master"))
	require.NoError(t, s.WriteBranch("master", objects.ID("deadbeef")))

	branch, err := s.HeadBranch()
	require.NoError(t, err)
	require.Equal(t, "master", branch)

	id, err := s.HeadCommit()
	require.NoError(t, err)
	require.Equal(t, objects.ID("deadbeef"), id)
}

func TestHeadCommitOnFreshBranchIsEmpty(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.SetHeadSymbolic("master"))

	id, err := s.HeadCommit()
	require.NoError(t, err)
	require.True(t, id.Empty())
}

func TestDetachedHeadIsAnError(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.SetHeadSymbolic("master"))
	require.NoError(t, s.WriteBranch("master", objects.ID("x")))

	// Corrupt HEAD into a detached form.
	require.NoError(t, atomicWriteLine(s.headPath(), "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"))

	_, err := s.HeadBranch()
	require.Error(t, err)
}
