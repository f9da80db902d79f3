package wire

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/systemshift/pygit/pkg/history"
	"github.com/systemshift/pygit/pkg/objects"
	"github.com/systemshift/pygit/pkg/refs"
	"github.com/systemshift/pygit/pkg/store"
)

// ErrNonFastForward is returned by Push when the remote tip is not an
// ancestor of the local tip.
var ErrNonFastForward = errors.New("wire: remote is not a fast-forward ancestor of local branch")

// dial opens one request/response connection with a wall-clock deadline
// of timeout, or DefaultTimeout when timeout <= 0 (spec.md §5); the server
// handles exactly one request per connection.
func dial(addr string, timeout time.Duration) (net.Conn, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("wire: dial %s: %w", addr, err)
	}
	conn.SetDeadline(time.Now().Add(timeout))
	return conn, nil
}

// remoteTip asks the server for a branch's current tip by opening a PULL
// request and reading only its TIP line; the connection is then dropped
// without draining the object stream that would otherwise follow.
func remoteTip(addr, repoName, branch string, timeout time.Duration) (objects.ID, error) {
	conn, err := dial(addr, timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	fw := newFrameWriter(conn)
	fr := newFrameReader(conn)
	if err := fw.writeLine("PULL %s %s", repoName, branch); err != nil {
		return "", err
	}
	line, err := fr.readLine()
	if err != nil {
		return "", err
	}
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != "TIP" {
		return "", protoErr("expected TIP line, got %q", line)
	}
	return parseIDOrNil(fields[1]), nil
}

// remoteHave asks the server which object ids it already holds for repo
// (bounded to its reachable-from-any-ref closure).
func remoteHave(addr, repoName string, timeout time.Duration) (map[objects.ID]struct{}, error) {
	conn, err := dial(addr, timeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	fw := newFrameWriter(conn)
	fr := newFrameReader(conn)
	if err := fw.writeLine("HAVE %s", repoName); err != nil {
		return nil, err
	}
	countLine, err := fr.readLine()
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(countLine)
	if err != nil || n < 0 {
		return nil, protoErr("malformed HAVE count %q", countLine)
	}
	have := make(map[objects.ID]struct{}, n)
	for i := 0; i < n; i++ {
		line, err := fr.readLine()
		if err != nil {
			return nil, err
		}
		have[objects.ID(line)] = struct{}{}
	}
	end, err := fr.readLine()
	if err != nil {
		return nil, err
	}
	if end != "END" {
		return nil, protoErr("expected END, got %q", end)
	}
	return have, nil
}

// Push walks the local branch's history back to the remote's current tip,
// sends the missing objects, then the ref update. Fails with
// ErrNonFastForward if the remote tip is not a local ancestor.
func Push(addr, repoName, branch string, st *store.Store, rf *refs.Store, timeout time.Duration) error {
	localTip, err := rf.ReadBranch(branch)
	if err != nil {
		return fmt.Errorf("wire: resolve local branch %q: %w", branch, err)
	}

	remoteTipID, err := remoteTip(addr, repoName, branch, timeout)
	if err != nil {
		return err
	}
	ok, err := history.IsAncestor(st, remoteTipID, localTip)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNonFastForward
	}

	candidates, err := st.ClosureUpTo(localTip, remoteTipID)
	if err != nil {
		return err
	}
	have, err := remoteHave(addr, repoName, timeout)
	if err != nil {
		return err
	}
	var missing []objects.ID
	for _, id := range candidates {
		if _, known := have[id]; !known {
			missing = append(missing, id)
		}
	}

	conn, err := dial(addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	fw := newFrameWriter(conn)
	fr := newFrameReader(conn)

	if err := fw.writeLine("PUSH %s %s", repoName, branch); err != nil {
		return err
	}
	ready, err := fr.readLine()
	if err != nil {
		return err
	}
	if ready != "READY" {
		return protoErr("expected READY, got %q", ready)
	}
	for _, id := range missing {
		framed, err := st.Get(id)
		if err != nil {
			return err
		}
		if err := fw.writeObject(id, framed); err != nil {
			return err
		}
	}
	if err := fw.writeLine("DONE"); err != nil {
		return err
	}
	if err := fw.writeLine("UPDATE %s %s", idOrNil(remoteTipID), localTip); err != nil {
		return err
	}
	resp, err := fr.readLine()
	if err != nil {
		return err
	}
	if resp != "OK" {
		return fmt.Errorf("wire: push rejected: %s", resp)
	}
	return nil
}

// Pull fetches missing objects reachable from the remote branch's tip and
// fast-forwards the local ref. Non-fast-forward local state (a local tip
// the remote tip isn't a descendant of) is rejected.
func Pull(addr, repoName, branch string, st *store.Store, rf *refs.Store, timeout time.Duration) error {
	conn, err := dial(addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	fw := newFrameWriter(conn)
	fr := newFrameReader(conn)

	if err := fw.writeLine("PULL %s %s", repoName, branch); err != nil {
		return err
	}
	tipLine, err := fr.readLine()
	if err != nil {
		return err
	}
	fields := strings.Fields(tipLine)
	if len(fields) != 2 || fields[0] != "TIP" {
		return protoErr("expected TIP line, got %q", tipLine)
	}
	remoteTipID := parseIDOrNil(fields[1])

	records, err := fr.readObjectStream("DONE")
	if err != nil {
		return err
	}
	for _, rec := range records {
		if _, _, perr := objects.Unframe(rec.Framed); perr != nil {
			return fmt.Errorf("wire: corrupt object %s from remote: %w", rec.ID, perr)
		}
		if !verifyObjectHash(rec.ID, rec.Framed) {
			return fmt.Errorf("wire: corrupt object %s from remote: claimed id does not match its hash", rec.ID)
		}
		if err := st.Put(rec.ID, rec.Framed); err != nil {
			return err
		}
	}

	if remoteTipID.Empty() {
		return nil
	}
	var localTip objects.ID
	if rf.BranchExists(branch) {
		localTip, err = rf.ReadBranch(branch)
		if err != nil {
			return err
		}
	}
	ok, err := history.IsAncestor(st, localTip, remoteTipID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNonFastForward
	}
	return rf.WriteBranch(branch, remoteTipID)
}

// CloneResult is the ref set and default branch a Clone fetched.
type CloneResult struct {
	Refs          map[string]objects.ID
	DefaultBranch string
}

// Clone fetches every ref and the full reachable object closure from the
// server into a freshly initialized empty store/ref-store pair.
func Clone(addr, repoName string, st *store.Store, rf *refs.Store, timeout time.Duration) (CloneResult, error) {
	conn, err := dial(addr, timeout)
	if err != nil {
		return CloneResult{}, err
	}
	defer conn.Close()
	fw := newFrameWriter(conn)
	fr := newFrameReader(conn)

	if err := fw.writeLine("CLONE %s", repoName); err != nil {
		return CloneResult{}, err
	}

	refsByName := make(map[string]objects.ID)
	for {
		line, err := fr.readLine()
		if err != nil {
			return CloneResult{}, err
		}
		if line == "REFS-END" {
			break
		}
		fields := strings.Fields(line)
		if len(fields) != 3 || fields[0] != "REF" {
			return CloneResult{}, protoErr("expected REF line, got %q", line)
		}
		refsByName[fields[1]] = objects.ID(fields[2])
	}

	records, err := fr.readObjectStream("DONE")
	if err != nil {
		return CloneResult{}, err
	}
	for _, rec := range records {
		if _, _, perr := objects.Unframe(rec.Framed); perr != nil {
			return CloneResult{}, fmt.Errorf("wire: corrupt object %s from remote: %w", rec.ID, perr)
		}
		if !verifyObjectHash(rec.ID, rec.Framed) {
			return CloneResult{}, fmt.Errorf("wire: corrupt object %s from remote: claimed id does not match its hash", rec.ID)
		}
		if err := st.Put(rec.ID, rec.Framed); err != nil {
			return CloneResult{}, err
		}
	}

	headLine, err := fr.readLine()
	if err != nil {
		return CloneResult{}, err
	}
	headFields := strings.Fields(headLine)
	if len(headFields) != 2 || headFields[0] != "HEAD" {
		return CloneResult{}, protoErr("expected HEAD line, got %q", headLine)
	}

	for name, id := range refsByName {
		if err := rf.WriteBranch(name, id); err != nil {
			return CloneResult{}, err
		}
	}
	if err := rf.SetHeadSymbolic(headFields[1]); err != nil {
		return CloneResult{}, err
	}

	return CloneResult{Refs: refsByName, DefaultBranch: headFields[1]}, nil
}
