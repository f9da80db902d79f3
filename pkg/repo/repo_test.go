package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/systemshift/pygit/pkg/worktree"
)

func setIdentityEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PYGIT_AUTHOR_NAME", "Alice")
	t.Setenv("PYGIT_AUTHOR_EMAIL", "a@x")
}

func TestInitializeThenOpen(t *testing.T) {
	root := t.TempDir()
	r, err := Initialize(root)
	require.NoError(t, err)
	require.Equal(t, "master", r.Config.Remote.DefaultBranch)

	branch, err := r.CurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "master", branch)

	reopened, err := Open(root)
	require.NoError(t, err)
	require.Equal(t, r.Config, reopened.Config)
}

func TestInitializeRefusesExistingRepository(t *testing.T) {
	root := t.TempDir()
	_, err := Initialize(root)
	require.NoError(t, err)

	_, err = Initialize(root)
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestOpenMissingRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	require.ErrorIs(t, err, ErrNotARepository)
}

func TestDiscoverWalksUpward(t *testing.T) {
	root := t.TempDir()
	_, err := Initialize(root)
	require.NoError(t, err)

	sub := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	r, err := Discover(sub)
	require.NoError(t, err)
	require.Equal(t, root, r.Root)
}

func TestCommitAddsStatusAndLog(t *testing.T) {
	setIdentityEnv(t)
	root := t.TempDir()
	r, err := Initialize(root)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello\n"), 0o644))
	require.NoError(t, r.WorkTree().Add("a.txt"))
	require.NoError(t, r.SaveState())

	status, err := r.WorkTree().Status()
	require.NoError(t, err)
	require.Equal(t, []worktree.Entry{{Path: "a.txt", Category: worktree.StagedNew}}, status)

	id, err := r.Commit("init")
	require.NoError(t, err)
	require.False(t, id.Empty())

	entries, err := r.Log(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, id, entries[0].ID)
}

func TestBranchCreateCheckoutDelete(t *testing.T) {
	setIdentityEnv(t)
	root := t.TempDir()
	r, err := Initialize(root)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello\n"), 0o644))
	require.NoError(t, r.WorkTree().Add("a.txt"))
	require.NoError(t, r.SaveState())
	_, err = r.Commit("init")
	require.NoError(t, err)

	require.NoError(t, r.CreateBranch("feature"))
	require.NoError(t, r.Checkout("feature"))

	branch, err := r.CurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "feature", branch)

	require.NoError(t, r.Checkout("master"))

	err = r.DeleteBranch("master")
	require.Error(t, err, "deleting the checked-out branch must be refused")

	require.NoError(t, r.DeleteBranch("feature"))
}

func TestVerifyDetectsNoCorruptionOnHealthyRepo(t *testing.T) {
	setIdentityEnv(t)
	root := t.TempDir()
	r, err := Initialize(root)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello\n"), 0o644))
	require.NoError(t, r.WorkTree().Add("a.txt"))
	require.NoError(t, r.SaveState())
	_, err = r.Commit("init")
	require.NoError(t, err)

	ids, err := r.Verify()
	require.NoError(t, err)
	require.NotEmpty(t, ids)
}

func TestAddRemoteAndResolveAddr(t *testing.T) {
	root := t.TempDir()
	r, err := Initialize(root)
	require.NoError(t, err)

	require.NoError(t, r.AddRemote("origin", "pygit://example.com:9000/myrepo"))
	require.ElementsMatch(t, []string{"origin"}, r.ListRemotes())

	addr, repoName, err := r.RemoteAddr("origin")
	require.NoError(t, err)
	require.Equal(t, "example.com:9000", addr)
	require.Equal(t, "myrepo", repoName)
}
