package tracking

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/systemshift/pygit/pkg/objects"
)

func TestOpenMissingFileYieldsEmptyLedger(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "tracking.yaml"))
	require.NoError(t, err)
	require.Empty(t, l.Paths)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracking.yaml")
	l, err := Open(path)
	require.NoError(t, err)
	l.Paths["a.txt"] = objects.ID("deadbeef")
	require.NoError(t, l.Save())

	reopened, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, objects.ID("deadbeef"), reopened.Paths["a.txt"])
}

func TestReplaceFromTreeFlattensNestedDirectories(t *testing.T) {
	leafBlob := objects.ID("leaf")
	nestedBlob := objects.ID("nested")

	trees := map[objects.ID]objects.Tree{
		"root": {Entries: []objects.TreeEntry{
			{Name: "a.txt", Mode: objects.ModeFile, Target: leafBlob},
			{Name: "src", Mode: objects.ModeDir, Target: "subtree"},
		}},
		"subtree": {Entries: []objects.TreeEntry{
			{Name: "app.py", Mode: objects.ModeFile, Target: nestedBlob},
		}},
	}
	resolve := func(id objects.ID) (objects.Tree, error) { return trees[id], nil }

	l, err := Open(filepath.Join(t.TempDir(), "tracking.yaml"))
	require.NoError(t, err)
	require.NoError(t, l.ReplaceFromTree(resolve, "root"))

	require.Equal(t, map[string]objects.ID{
		"a.txt":      leafBlob,
		"src/app.py": nestedBlob,
	}, l.Paths)
}

func TestReplaceFromTreeEmptyRootYieldsEmptyLedger(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "tracking.yaml"))
	require.NoError(t, err)
	l.Paths["stale"] = objects.ID("x")

	resolve := func(id objects.ID) (objects.Tree, error) { return objects.Tree{}, nil }
	require.NoError(t, l.ReplaceFromTree(resolve, objects.ID("")))

	require.Empty(t, l.Paths)
}
