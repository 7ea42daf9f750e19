// Package gitrepo defines the repository port: the types and client interface
// the content backend needs from a git hosting provider. pkg/gitea is the
// production implementation; tests substitute in-memory fakes.
package gitrepo

import "context"

// EntryType classifies a tree entry.
type EntryType string

// Tree entry types as reported by the git object model.
const (
	EntryBlob   EntryType = "blob"
	EntryTree   EntryType = "tree"
	EntryCommit EntryType = "commit" // submodule pointer
)

// TreeEntry is one blob descriptor from a repository tree listing.
// Immutable once returned.
type TreeEntry struct {
	Path      string
	Name      string
	Type      EntryType
	ContentID string // blob SHA; doubles as cache key and concurrency token
	Size      int64
}

// FileContent is a file's decoded payload pinned to the content identifier it
// was fetched at. The caller owns Data; caches hold their own copy.
type FileContent struct {
	Path      string
	ContentID string
	Data      []byte
}

// Text returns the payload as a string.
func (f *FileContent) Text() string { return string(f.Data) }

// Action is the kind of change applied to one path in a commit.
type Action string

// Change actions accepted by Commit.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionMove   Action = "move"
)

// Change is one file operation within a commit batch. Content is the raw
// payload (not yet wire-encoded); PriorContentID carries the blob SHA read
// before the write so the host can reject concurrent modification.
type Change struct {
	Path           string
	Action         Action
	Content        []byte // nil for delete
	PriorContentID string // required for update and delete, empty for create
	FromPath       string // original path for move
}

// CommitBatch is an ordered set of changes intended to land as exactly one
// commit on Branch. When NewBranch is set the commit lands on a branch of
// that name created from Branch.
type CommitBatch struct {
	Message   string
	Branch    string
	NewBranch string
	Changes   []Change
}

// Permissions are the caller's rights on a repository.
type Permissions struct {
	Admin bool
	Push  bool
	Pull  bool
}

// RepoInfo is repository metadata relevant to access checks.
type RepoInfo struct {
	FullName      string
	DefaultBranch string
	Permissions   Permissions
}

// User is the authenticated git-host account.
type User struct {
	ID        int64
	Login     string
	FullName  string
	Email     string
	AvatarURL string
}

// ListOptions controls a tree listing.
type ListOptions struct {
	// Prefix restricts results to the named directory ("" = repository root).
	// Matching is by path segment: "posts" matches "posts/a.md" but never
	// "posts2/a.md".
	Prefix string
	// Recursive includes entries at any depth below Prefix. When false only
	// direct children of Prefix are returned.
	Recursive bool
	// Ref is a branch name to list at; empty means the client's configured
	// branch. The ref is resolved to a commit SHA once per listing.
	Ref string
	// PageSize overrides the per-page entry count requested from the host.
	PageSize int
}

// ReadOptions controls a file read.
type ReadOptions struct {
	// Ref is the branch or commit SHA to read at; empty means the client's
	// configured branch.
	Ref string
	// AllowCached permits intermediary HTTP caches to answer the request.
	// Only safe when Ref pins an immutable commit; branch reads default to
	// cache-busting.
	AllowCached bool
}

// Client is the port the content backend depends on.
//
// Commit applies every change in the batch as a single commit: either all
// changes land or none do. StatFile reports the current blob SHA at a path,
// returning NotFoundError when the path does not exist.
type Client interface {
	ResolveBranch(ctx context.Context, branch string) (string, error)
	ListFiles(ctx context.Context, opts ListOptions) ([]TreeEntry, error)
	ReadFile(ctx context.Context, path string, opts ReadOptions) (*FileContent, error)
	StatFile(ctx context.Context, path, ref string) (string, error)
	Commit(ctx context.Context, batch CommitBatch) (string, error)
	Repo(ctx context.Context) (*RepoInfo, error)
	CurrentUser(ctx context.Context) (*User, error)
}
