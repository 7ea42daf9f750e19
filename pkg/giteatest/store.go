package giteatest

import (
	"crypto/sha1" //nolint:gosec // git object IDs are SHA-1 by definition
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// fileState is one blob in a revision snapshot.
type fileState struct {
	sha  string
	data []byte
}

// revision is a commit together with the full tree snapshot it produced.
// Snapshots keep old commit IDs resolvable after the branch moves on.
type revision struct {
	id      string
	message string
	branch  string
	parent  string
	created time.Time
	files   map[string]fileState
}

// Commit describes one commit for test assertions and the dashboard.
type Commit struct {
	ID      string
	Message string
	Branch  string
	Files   int
	Created time.Time
}

// BlobSHA returns the git blob object ID for data: the SHA a real Gitea
// server reports for a file with that content.
func BlobSHA(data []byte) string {
	h := sha1.New() //nolint:gosec // git object IDs are SHA-1 by definition
	fmt.Fprintf(h, "blob %d", len(data))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// newCommitID returns a random 40-hex commit ID.
func newCommitID() string {
	sum := sha1.Sum([]byte(uuid.NewString())) //nolint:gosec // not a security boundary
	return hex.EncodeToString(sum[:])
}

// dirSHA is a stable pseudo object ID for a synthetic tree entry.
func dirSHA(path string) string {
	sum := sha1.Sum([]byte("tree:" + path)) //nolint:gosec // not a security boundary
	return hex.EncodeToString(sum[:])
}

// resolveRef returns the revision a ref names: a branch, a commit ID, or the
// default branch for "". Callers hold at least a read lock.
func (s *Server) resolveRef(ref string) (*revision, bool) {
	if ref == "" {
		ref = s.opts.Branch
	}
	if head, ok := s.heads[ref]; ok {
		ref = head
	}
	rev, ok := s.revisions[ref]
	return rev, ok
}

// commitSnapshot records files as a new commit on branch and advances its
// head. Callers hold the write lock.
func (s *Server) commitSnapshot(branch, message, parent string, files map[string]fileState) *revision {
	rev := &revision{
		id:      newCommitID(),
		message: message,
		branch:  branch,
		parent:  parent,
		created: time.Now().UTC(),
		files:   files,
	}
	s.revisions[rev.id] = rev
	s.heads[branch] = rev.id
	s.commits = append(s.commits, Commit{
		ID:      rev.id,
		Message: message,
		Branch:  branch,
		Files:   len(files),
		Created: rev.created,
	})
	return rev
}

// copyFiles clones a snapshot so a new revision never aliases its parent.
func copyFiles(files map[string]fileState) map[string]fileState {
	out := make(map[string]fileState, len(files))
	for p, f := range files {
		out[p] = f
	}
	return out
}

// treeRecord is one row of a tree listing before serialization.
type treeRecord struct {
	path     string
	entryTyp string // "blob" or "tree"
	sha      string
	size     int64
}

// treeRecords flattens a snapshot into git-style tree rows: every blob plus a
// synthetic tree row per directory, sorted by path. With recursive false only
// the repository root's direct rows are returned.
func treeRecords(files map[string]fileState, recursive bool) []treeRecord {
	dirs := map[string]bool{}
	records := make([]treeRecord, 0, len(files))
	for p, f := range files {
		records = append(records, treeRecord{path: p, entryTyp: "blob", sha: f.sha, size: int64(len(f.data))})
		for dir := parentDir(p); dir != ""; dir = parentDir(dir) {
			dirs[dir] = true
		}
	}
	for dir := range dirs {
		records = append(records, treeRecord{path: dir, entryTyp: "tree", sha: dirSHA(dir)})
	}
	if !recursive {
		kept := records[:0]
		for _, r := range records {
			if !strings.Contains(r.path, "/") {
				kept = append(kept, r)
			}
		}
		records = kept
	}
	sort.Slice(records, func(i, j int) bool { return records[i].path < records[j].path })
	return records
}

func parentDir(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx == -1 {
		return ""
	}
	return p[:idx]
}

// childRow is one row of a directory listing.
type childRow struct {
	name     string
	path     string
	sha      string
	entryTyp string // "file" or "dir"
	size     int64
}

// listDir returns the direct children of dirPath in a snapshot, sorted by
// name, matching the contents API's directory response.
func listDir(files map[string]fileState, dirPath string) []childRow {
	prefix := dirPath
	if prefix != "" {
		prefix += "/"
	}

	seen := map[string]bool{}
	var rows []childRow
	for p, f := range files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := p[len(prefix):]
		idx := strings.Index(rest, "/")
		if idx == -1 {
			rows = append(rows, childRow{name: rest, path: p, sha: f.sha, entryTyp: "file", size: int64(len(f.data))})
			continue
		}
		name := rest[:idx]
		if seen[name] {
			continue
		}
		seen[name] = true
		childPath := name
		if dirPath != "" {
			childPath = dirPath + "/" + name
		}
		rows = append(rows, childRow{name: name, path: childPath, sha: dirSHA(childPath), entryTyp: "dir"})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })
	return rows
}
