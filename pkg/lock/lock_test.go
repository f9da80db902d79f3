package lock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	dir := t.TempDir()
	l, err := Acquire(dir)
	require.NoError(t, err)
	require.NoError(t, l.Release())
}

func TestSecondAcquireFailsWhileHeld(t *testing.T) {
	dir := t.TempDir()
	l1, err := Acquire(dir)
	require.NoError(t, err)
	defer l1.Release()

	_, err = Acquire(dir)
	require.ErrorIs(t, err, ErrLocked)
}

func TestAcquireSucceedsAfterRelease(t *testing.T) {
	dir := t.TempDir()
	l1, err := Acquire(dir)
	require.NoError(t, err)
	require.NoError(t, l1.Release())

	l2, err := Acquire(dir)
	require.NoError(t, err)
	require.NoError(t, l2.Release())
}
