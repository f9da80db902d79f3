package wire

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"

	"github.com/systemshift/pygit/pkg/history"
	"github.com/systemshift/pygit/pkg/objects"
	"github.com/systemshift/pygit/pkg/refs"
	"github.com/systemshift/pygit/pkg/store"
)

// RepoHandle bundles the store/refs/default-branch a server needs to
// answer requests for one named repository.
type RepoHandle struct {
	Store         *store.Store
	Refs          *refs.Store
	DefaultBranch string
}

// Resolver looks up a repository by the name carried in the request line.
type Resolver func(repo string) (*RepoHandle, error)

// Server accepts one connection at a time (spec.md §5: concurrent clients
// are an explicit non-goal) and dispatches HAVE/PUSH/PULL/CLONE requests.
type Server struct {
	Resolve Resolver
	Log     *zap.SugaredLogger
}

// Serve accepts and handles connections sequentially until the listener
// closes or ctx-like cancellation is signaled via listener.Close from the
// caller.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("wire: accept: %w", err)
		}
		s.handleConn(conn)
	}
}

func (s *Server) logger() *zap.SugaredLogger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop().Sugar()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	log := s.logger()
	fr := newFrameReader(conn)
	fw := newFrameWriter(conn)

	header, err := fr.readLine()
	if err != nil {
		log.Warnw("wire: failed to read request header", "err", err)
		return
	}
	fields := strings.Fields(header)
	if len(fields) < 2 {
		log.Warnw("wire: malformed request header", "header", header)
		return
	}
	cmd, repoName := fields[0], fields[1]
	log.Infow("wire: request", "cmd", cmd, "repo", repoName)

	repo, err := s.Resolve(repoName)
	if err != nil {
		fw.writeLine("ERR %s", err)
		return
	}

	switch cmd {
	case "HAVE":
		err = s.serveHave(fw, repo)
	case "PUSH":
		if len(fields) < 3 {
			err = protoErr("PUSH requires a branch")
		} else {
			err = s.servePush(fr, fw, repo, fields[2])
		}
	case "PULL":
		if len(fields) < 3 {
			err = protoErr("PULL requires a branch")
		} else {
			err = s.servePull(fr, fw, repo, fields[2])
		}
	case "CLONE":
		err = s.serveClone(fw, repo)
	default:
		err = protoErr("unknown command %q", cmd)
	}
	if err != nil {
		log.Warnw("wire: request failed", "cmd", cmd, "repo", repoName, "err", err)
	}
}

func allRefIDs(repo *RepoHandle) ([]objects.ID, error) {
	branches, err := repo.Refs.ListBranches()
	if err != nil {
		return nil, err
	}
	var ids []objects.ID
	for _, b := range branches {
		id, err := repo.Refs.ReadBranch(b)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Server) serveHave(fw *frameWriter, repo *RepoHandle) error {
	roots, err := allRefIDs(repo)
	if err != nil {
		return err
	}
	ids, err := repo.Store.Closure(roots)
	if err != nil {
		return err
	}
	if err := fw.writeLine("%d", len(ids)); err != nil {
		return err
	}
	for _, id := range ids {
		if err := fw.writeLine("%s", id); err != nil {
			return err
		}
	}
	return fw.writeLine("END")
}

// servePush receives a stream of objects, validates each by rehashing,
// then the ref update. It only applies the update if every object
// validated and the fast-forward precondition still holds at apply time
// (guards against a race with another writer — RefRaceLost).
func (s *Server) servePush(fr *frameReader, fw *frameWriter, repo *RepoHandle, branch string) error {
	if err := fw.writeLine("READY"); err != nil {
		return err
	}
	records, err := fr.readObjectStream("DONE")
	if err != nil {
		return err
	}
	for _, rec := range records {
		kind, _, perr := objects.Unframe(rec.Framed)
		if perr != nil {
			fw.writeLine("ERR corrupt object %s", rec.ID)
			return fmt.Errorf("wire: corrupt object %s: %w", rec.ID, perr)
		}
		_ = kind
		if !verifyObjectHash(rec.ID, rec.Framed) {
			fw.writeLine("ERR corrupt object %s", rec.ID)
			return fmt.Errorf("wire: corrupt object %s: claimed id does not match its hash", rec.ID)
		}
		if err := repo.Store.Put(rec.ID, rec.Framed); err != nil {
			fw.writeLine("ERR %s", err)
			return err
		}
	}

	updateLine, err := fr.readLine()
	if err != nil {
		return err
	}
	fields := strings.Fields(updateLine)
	if len(fields) != 3 || fields[0] != "UPDATE" {
		fw.writeLine("ERR malformed update")
		return protoErr("malformed update line %q", updateLine)
	}
	oldID := parseIDOrNil(fields[1])
	newID := objects.ID(fields[2])

	var currentTip objects.ID
	if repo.Refs.BranchExists(branch) {
		currentTip, err = repo.Refs.ReadBranch(branch)
		if err != nil {
			fw.writeLine("ERR %s", err)
			return err
		}
	}
	if currentTip != oldID {
		fw.writeLine("ERR ref moved since last HAVE; race lost")
		return fmt.Errorf("wire: ref race lost on %s", branch)
	}
	ok, err := history.IsAncestor(repo.Store, oldID, newID)
	if err != nil {
		fw.writeLine("ERR %s", err)
		return err
	}
	if !ok {
		fw.writeLine("ERR non-fast-forward")
		return fmt.Errorf("wire: non-fast-forward push to %s", branch)
	}
	if err := repo.Refs.WriteBranch(branch, newID); err != nil {
		fw.writeLine("ERR %s", err)
		return err
	}
	return fw.writeLine("OK")
}

// servePull streams the full object closure reachable from the branch tip.
// This core always streams the full closure rather than negotiating a
// HAVE round-trip first (spec.md §4.9 allows either); the client's own
// store-level Put dedup makes re-sending already-present objects cheap
// and correct, matching how the teacher favors simplicity over protocol
// cleverness elsewhere.
func (s *Server) servePull(fr *frameReader, fw *frameWriter, repo *RepoHandle, branch string) error {
	_ = fr
	tip, err := repo.Refs.ReadBranch(branch)
	if err != nil {
		if errors.Is(err, refs.ErrNotFound) {
			if err := fw.writeLine("TIP %s", nilID); err != nil {
				return err
			}
			return fw.writeLine("DONE")
		}
		return err
	}
	if err := fw.writeLine("TIP %s", tip); err != nil {
		return err
	}
	ids, err := repo.Store.Closure([]objects.ID{tip})
	if err != nil {
		return err
	}
	for _, id := range ids {
		framed, err := repo.Store.Get(id)
		if err != nil {
			return err
		}
		if err := fw.writeObject(id, framed); err != nil {
			return err
		}
	}
	return fw.writeLine("DONE")
}

func (s *Server) serveClone(fw *frameWriter, repo *RepoHandle) error {
	branches, err := repo.Refs.ListBranches()
	if err != nil {
		return err
	}
	var roots []objects.ID
	for _, b := range branches {
		id, err := repo.Refs.ReadBranch(b)
		if err != nil {
			return err
		}
		roots = append(roots, id)
		if err := fw.writeLine("REF %s %s", b, id); err != nil {
			return err
		}
	}
	if err := fw.writeLine("REFS-END"); err != nil {
		return err
	}
	ids, err := repo.Store.Closure(roots)
	if err != nil {
		return err
	}
	for _, id := range ids {
		framed, err := repo.Store.Get(id)
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
	return fw.writeLine("HEAD %s", repo.DefaultBranch)
}
