// Package ignore compiles and applies .pygitignore patterns, per spec.md
// §4.4. The teacher has no analogue for this; it is grounded directly on
// spec.md's stated syntax.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Pattern is one compiled line of a .pygitignore file.
type Pattern struct {
	Glob      string // component-level glob, e.g. "*.log"
	DirOnly   bool   // trailing "/" restricts the match to directories
	raw       string
	lineNum   int
}

// Matcher holds the ordered pattern list for one repository root.
type Matcher struct {
	patterns []Pattern
	warnings []string
}

// metaDirName is always implicitly ignored, regardless of .pygitignore.
const metaDirName = ".pygit"

// Compile reads and compiles .pygitignore at repoRoot. A missing file
// yields an empty, valid Matcher. Malformed lines are never fatal — they
// are skipped and recorded as warnings (IgnoreSyntax in spec.md §7).
func Compile(repoRoot string) (*Matcher, error) {
	m := &Matcher{}
	f, err := os.Open(filepath.Join(repoRoot, ".pygitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("ignore: open .pygitignore: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		p := Pattern{raw: trimmed, lineNum: lineNum}
		if strings.Contains(trimmed, "/") && !strings.HasSuffix(trimmed, "/") {
			// Leading/embedded "/" anchoring is an explicit non-goal; such
			// lines are accepted but degrade to matching the base name.
			m.warnings = append(m.warnings, fmt.Sprintf("line %d: %q: path separators are not supported, matching final component only", lineNum, trimmed))
			trimmed = trimmed[strings.LastIndex(trimmed, "/")+1:]
		}
		if strings.HasSuffix(trimmed, "/") {
			p.DirOnly = true
			trimmed = strings.TrimSuffix(trimmed, "/")
		}
		if trimmed == "" {
			m.warnings = append(m.warnings, fmt.Sprintf("line %d: empty pattern after trimming", lineNum))
			continue
		}
		p.Glob = trimmed
		if _, err := filepath.Match(p.Glob, "probe"); err != nil {
			m.warnings = append(m.warnings, fmt.Sprintf("line %d: %q: %v", lineNum, trimmed, err))
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ignore: scan .pygitignore: %w", err)
	}
	return m, nil
}

// Warnings returns human-readable descriptions of skipped malformed lines.
func (m *Matcher) Warnings() []string { return m.warnings }

// Match reports whether relPath (working-tree-relative, POSIX separators)
// should be ignored. isDir indicates whether relPath names a directory.
func (m *Matcher) Match(relPath string, isDir bool) bool {
	components := strings.Split(relPath, "/")
	for i, comp := range components {
		if comp == metaDirName && i == 0 {
			return true
		}
		componentIsDir := isDir || i < len(components)-1
		for _, p := range m.patterns {
			if p.DirOnly && !componentIsDir {
				continue
			}
			if ok, _ := filepath.Match(p.Glob, comp); ok {
				return true
			}
		}
	}
	return false
}
