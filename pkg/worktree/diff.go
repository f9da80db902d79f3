package worktree

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/systemshift/pygit/pkg/objects"
)

// binaryProbeWindow is how much of each side is inspected for a NUL byte
// before falling back to the "Binary files differ" heuristic (spec.md
// §4.6).
const binaryProbeWindow = 8 * 1024

const contextLines = 3

// FileDiff is a unified, line-level diff between two versions of one path.
type FileDiff struct {
	Path   string
	Binary bool
	Text   string // unified diff body; empty when Binary is true
}

func looksBinary(b []byte) bool {
	probe := b
	if len(probe) > binaryProbeWindow {
		probe = probe[:binaryProbeWindow]
	}
	return bytes.IndexByte(probe, 0) >= 0
}

// unifiedDiff renders a deterministic unified diff with contextLines lines
// of context, using diffmatchpatch (github.com/sergi/go-diff) for the
// underlying line-level diff the same way NahomAnteneh/vec's VCS does in
// the corpus.
func unifiedDiff(path string, oldText, newText string) FileDiff {
	if looksBinary([]byte(oldText)) || looksBinary([]byte(newText)) {
		return FileDiff{Path: path, Binary: true}
	}

	dmp := diffmatchpatch.New()
	oldLines, newLines, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(oldLines, newLines, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var ops []lineOp
	for _, d := range diffs {
		lines := splitKeepEmpty(d.Text)
		for _, l := range lines {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, lineOp{kind: ' ', text: l})
			case diffmatchpatch.DiffDelete:
				ops = append(ops, lineOp{kind: '-', text: l})
			case diffmatchpatch.DiffInsert:
				ops = append(ops, lineOp{kind: '+', text: l})
			}
		}
	}

	text := renderHunks(ops, contextLines)
	return FileDiff{Path: path, Text: text}
}

type lineOp struct {
	kind byte // ' ', '+', '-'
	text string
}

// splitKeepEmpty splits on "\n" without dropping a trailing empty segment,
// then drops the final artificial empty segment diffmatchpatch's
// line-mode encoding introduces for a trailing newline.
func splitKeepEmpty(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// renderHunks groups lineOps into unified-diff hunks with up to
// contextLines lines of context on each side of a change run.
func renderHunks(ops []lineOp, context int) string {
	type hunkLine struct {
		kind byte
		text string
	}
	var hunks [][]hunkLine
	var cur []hunkLine
	changeSeen := false
	trailingEqual := 0

	flush := func() {
		if changeSeen {
			hunks = append(hunks, cur)
		}
		cur = nil
		changeSeen = false
		trailingEqual = 0
	}

	for i, op := range ops {
		if op.kind == ' ' {
			if !changeSeen {
				// Leading context: keep only the last `context` lines.
				cur = append(cur, hunkLine{op.kind, op.text})
				if len(cur) > context {
					cur = cur[len(cur)-context:]
				}
			} else {
				cur = append(cur, hunkLine{op.kind, op.text})
				trailingEqual++
				if trailingEqual > context {
					// Close out this hunk at `context` lines past the
					// last change, and look ahead for the next one.
					cur = cur[:len(cur)-(trailingEqual-context)]
					flush()
				}
			}
		} else {
			changeSeen = true
			trailingEqual = 0
			cur = append(cur, hunkLine{op.kind, op.text})
		}
		_ = i
	}
	flush()

	var sb strings.Builder
	for _, h := range hunks {
		for _, l := range h {
			fmt.Fprintf(&sb, "%c%s\n", l.kind, l.text)
		}
	}
	return sb.String()
}

// DiffWorkingTree compares the ledger version of every staged or modified
// path (empty for paths not in the ledger) against its working-tree
// content. Staged index blobs are not read: a staged path is diffed from
// its ledger version to what is on disk now.
func (w *WorkTree) DiffWorkingTree() ([]FileDiff, error) {
	entries, err := w.Status()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var diffs []FileDiff
	for _, e := range entries {
		if e.Category != UnstagedModified && e.Category != StagedModified && e.Category != StagedNew {
			continue
		}
		if seen[e.Path] {
			continue
		}
		seen[e.Path] = true

		var oldText string
		if ledgerID, ok := w.Ledger.Paths[e.Path]; ok {
			blob, err := w.Store.GetBlob(ledgerID)
			if err != nil {
				return nil, err
			}
			oldText = string(blob.Data)
		}

		newBytes, err := os.ReadFile(w.Root + string(os.PathSeparator) + e.Path)
		if err != nil {
			return nil, fmt.Errorf("worktree: read %s: %w", e.Path, err)
		}
		diffs = append(diffs, unifiedDiff(e.Path, oldText, string(newBytes)))
	}
	return diffs, nil
}

// DiffBlobs compares two stored blobs directly, e.g. one path across two
// commits. An empty id stands for an absent side.
func (w *WorkTree) DiffBlobs(path string, oldID, newID objects.ID) (FileDiff, error) {
	var oldText, newText string
	if !oldID.Empty() {
		b, err := w.Store.GetBlob(oldID)
		if err != nil {
			return FileDiff{}, err
		}
		oldText = string(b.Data)
	}
	if !newID.Empty() {
		b, err := w.Store.GetBlob(newID)
		if err != nil {
			return FileDiff{}, err
		}
		newText = string(b.Data)
	}
	return unifiedDiff(path, oldText, newText), nil
}
