// Package objects implements the three immutable object kinds pygit stores:
// blobs, trees, and commits. Identity is the SHA-1 digest of an object's
// canonical framed byte form, so serialization here must be deterministic.
package objects

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind names the three object types, also used as the wire/frame type tag.
type Kind string

const (
	KindBlob   Kind = "blob"
	KindTree   Kind = "tree"
	KindCommit Kind = "commit"
)

// ID is a hex-encoded SHA-1 digest (40 characters, 160 bits).
type ID string

// Empty reports whether the id is the zero value (no object / no parent).
func (id ID) Empty() bool { return id == "" }

func (id ID) String() string { return string(id) }

// Mode is the small set of tree-entry modes this core supports.
type Mode string

const (
	ModeFile Mode = "100644"
	ModeExec Mode = "100755"
	ModeDir  Mode = "40000"
)

var ErrMalformed = errors.New("objects: malformed framed bytes")

// Frame wraps payload in "<type> <length>\0<payload>" and returns the framed
// bytes together with the ID (hex SHA-1 digest of the full framed form).
func Frame(kind Kind, payload []byte) (ID, []byte) {
	header := fmt.Sprintf("%s %d\x00", kind, len(payload))
	framed := make([]byte, 0, len(header)+len(payload))
	framed = append(framed, header...)
	framed = append(framed, payload...)
	sum := sha1.Sum(framed)
	return ID(hex.EncodeToString(sum[:])), framed
}

// Unframe splits a stored byte string back into its type tag and payload,
// validating the length prefix. It does not itself verify the digest; the
// store does that (distinguishing ObjectMissing from Corrupt).
func Unframe(framed []byte) (Kind, []byte, error) {
	nul := bytes.IndexByte(framed, 0)
	if nul < 0 {
		return "", nil, ErrMalformed
	}
	header := string(framed[:nul])
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, ErrMalformed
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 0 {
		return "", nil, ErrMalformed
	}
	payload := framed[nul+1:]
	if len(payload) != n {
		return "", nil, ErrMalformed
	}
	return Kind(parts[0]), payload, nil
}

// Blob is the raw bytes of a single file. No name or mode travels with it;
// those live in the tree entry that references it.
type Blob struct {
	Data []byte
}

// Frame serializes the blob to its canonical framed form and id.
func (b Blob) Frame() (ID, []byte) {
	return Frame(KindBlob, b.Data)
}

// TreeEntry is one (name, mode, target) triple inside a Tree.
type TreeEntry struct {
	Name   string
	Mode   Mode
	Target ID
}

// Tree is a directory snapshot: a set of uniquely-named entries.
type Tree struct {
	Entries []TreeEntry
}

// Sorted returns the entries in the lexicographic-by-name order that the
// canonical serialization requires.
func (t Tree) Sorted() []TreeEntry {
	out := make([]TreeEntry, len(t.Entries))
	copy(out, t.Entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Frame serializes the tree: for each entry in sorted order,
// "<mode-octal> <name>\0<20-raw-digest-bytes>", concatenated with no
// separators between entries.
func (t Tree) Frame() (ID, []byte, error) {
	entries := t.Sorted()
	seen := make(map[string]struct{}, len(entries))
	var buf bytes.Buffer
	for _, e := range entries {
		if _, dup := seen[e.Name]; dup {
			return "", nil, fmt.Errorf("objects: duplicate tree entry name %q", e.Name)
		}
		seen[e.Name] = struct{}{}
		if strings.Contains(e.Name, "/") {
			return "", nil, fmt.Errorf("objects: tree entry name %q contains a path separator", e.Name)
		}
		raw, err := hex.DecodeString(string(e.Target))
		if err != nil || len(raw) != 20 {
			return "", nil, fmt.Errorf("objects: tree entry %q has malformed target id %q", e.Name, e.Target)
		}
		buf.WriteString(string(e.Mode))
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(raw)
	}
	id, framed := Frame(KindTree, buf.Bytes())
	return id, framed, nil
}

// ParseTree reconstructs a Tree from a framed tree payload.
func ParseTree(payload []byte) (Tree, error) {
	var t Tree
	for len(payload) > 0 {
		sp := bytes.IndexByte(payload, ' ')
		if sp < 0 {
			return Tree{}, ErrMalformed
		}
		mode := Mode(payload[:sp])
		rest := payload[sp+1:]
		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return Tree{}, ErrMalformed
		}
		name := string(rest[:nul])
		rest = rest[nul+1:]
		if len(rest) < 20 {
			return Tree{}, ErrMalformed
		}
		target := ID(hex.EncodeToString(rest[:20]))
		t.Entries = append(t.Entries, TreeEntry{Name: name, Mode: mode, Target: target})
		payload = rest[20:]
	}
	return t, nil
}

// Identity holds the name/email/timestamp triple recorded for both the
// author and the committer of a commit.
type Identity struct {
	Name     string
	Email    string
	Unix     int64
	TZOffset string // e.g. "+0000"
}

func (p Identity) line(field string) string {
	return fmt.Sprintf("%s %s %s %d %s\n", field, p.Name, p.Email, p.Unix, p.TZOffset)
}

// Commit attributes a tree snapshot to a point in history.
type Commit struct {
	Tree      ID
	Parent    ID // empty for the initial commit; this core has at most one
	Author    Identity
	Committer Identity
	Message   string
}

// Frame serializes the commit payload in the exact line order spec.md
// mandates: tree, optional parent, author, committer, blank line, message.
func (c Commit) Frame() (ID, []byte) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	if !c.Parent.Empty() {
		fmt.Fprintf(&buf, "parent %s\n", c.Parent)
	}
	buf.WriteString(c.Author.line("author"))
	buf.WriteString(c.Committer.line("committer"))
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return Frame(KindCommit, buf.Bytes())
}

// ParseCommit reconstructs a Commit from a framed commit payload.
func ParseCommit(payload []byte) (Commit, error) {
	text := string(payload)
	headerEnd := strings.Index(text, "\n\n")
	if headerEnd < 0 {
		return Commit{}, ErrMalformed
	}
	header := text[:headerEnd]
	message := text[headerEnd+2:]

	var c Commit
	c.Message = message
	for _, line := range strings.Split(header, "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			return Commit{}, ErrMalformed
		}
		switch fields[0] {
		case "tree":
			c.Tree = ID(fields[1])
		case "parent":
			c.Parent = ID(fields[1])
		case "author":
			id, err := parseIdentity(fields[1])
			if err != nil {
				return Commit{}, err
			}
			c.Author = id
		case "committer":
			id, err := parseIdentity(fields[1])
			if err != nil {
				return Commit{}, err
			}
			c.Committer = id
		default:
			return Commit{}, ErrMalformed
		}
	}
	if c.Tree == "" {
		return Commit{}, ErrMalformed
	}
	return c, nil
}

func parseIdentity(s string) (Identity, error) {
	parts := strings.Split(s, " ")
	if len(parts) != 4 {
		return Identity{}, ErrMalformed
	}
	unix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Identity{}, ErrMalformed
	}
	return Identity{Name: parts[0], Email: parts[1], Unix: unix, TZOffset: parts[3]}, nil
}
