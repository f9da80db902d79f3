package worktree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnifiedDiffContextWindow(t *testing.T) {
	old := "a\nb\nc\nd\ne\nf\ng\n"
	new := "a\nb\nc\nX\ne\nf\ng\n"
	d := unifiedDiff("f.txt", old, new)
	require.False(t, d.Binary)
	require.Contains(t, d.Text, "-d\n")
	require.Contains(t, d.Text, "+X\n")
	require.Contains(t, d.Text, " c\n")
	require.Contains(t, d.Text, " e\n")
}

func TestBinaryHeuristic(t *testing.T) {
	old := "text"
	new := string([]byte{0x00, 0x01, 0x02})
	d := unifiedDiff("bin", old, new)
	require.True(t, d.Binary)
	require.Empty(t, d.Text)
}

func TestLooksBinaryRespectsProbeWindow(t *testing.T) {
	clean := make([]byte, binaryProbeWindow+10)
	for i := range clean {
		clean[i] = 'a'
	}
	require.False(t, looksBinary(clean))

	withNulBeyondWindow := make([]byte, binaryProbeWindow+10)
	for i := range withNulBeyondWindow {
		withNulBeyondWindow[i] = 'a'
	}
	withNulBeyondWindow[binaryProbeWindow+5] = 0
	require.False(t, looksBinary(withNulBeyondWindow), "NUL byte beyond the probe window should not trigger the heuristic")

	withNulInWindow := make([]byte, binaryProbeWindow)
	withNulInWindow[10] = 0
	require.True(t, looksBinary(withNulInWindow))
}
