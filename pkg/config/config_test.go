package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadIdentityRequiresBothVars(t *testing.T) {
	_, err := ReadIdentity()
	require.ErrorIs(t, err, ErrIdentityMissing)

	t.Setenv("PYGIT_AUTHOR_NAME", "Alice")
	_, err = ReadIdentity()
	require.ErrorIs(t, err, ErrIdentityMissing)

	t.Setenv("PYGIT_AUTHOR_EMAIL", "a@x")
	id, err := ReadIdentity()
	require.NoError(t, err)
	require.Equal(t, Identity{Name: "Alice", Email: "a@x"}, id)
}

func TestLoadMissingFileYieldsDefaultCore(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	require.Equal(t, DefaultCore(), c)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	c := DefaultCore()
	c.Remote.DefaultBranch = "trunk"
	c.Remote.Port = 9999

	require.NoError(t, Save(path, c))
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, c, reloaded)
}
