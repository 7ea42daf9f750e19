// Package giteatest runs an in-memory Gitea API for tests and local
// development: the endpoints vellum speaks, backed by a branch-and-commit
// model instead of a real git repository. Commit IDs are random, blob IDs
// are real git blob SHAs, and batch commits apply atomically with the same
// conflict answers a live server gives.
//
// Typical test use:
//
//	srv := giteatest.RunT(t, giteatest.Options{Token: "t0ken"})
//	srv.Seed(map[string]string{"posts/hello.md": "# Hello"})
//
// then point a client at srv.APIRoot(). The zero Options value serves the
// repository "acme/site" with default branch "master" and no authentication.
package giteatest

import (
	"log/slog"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
)

// Options configures the simulated instance.
type Options struct {
	// Owner and Name identify the single repository served.
	// Default "acme"/"site".
	Owner string
	Name  string
	// Branch is the default branch. Default "master".
	Branch string
	// Token, when set, is required in the Authorization header as
	// "token <Token>" or "Bearer <Token>". Empty disables authentication.
	Token string
	// User is the identity reported by /user.
	User User
	// ReadOnly drops push and admin from the reported repository
	// permissions.
	ReadOnly bool
	// Logger, when set, logs one line per API request.
	Logger *slog.Logger
}

// User is the account the simulated token belongs to.
type User struct {
	ID        int64
	Login     string
	FullName  string
	Email     string
	AvatarURL string
}

// Tester is the subset of testing.T that RunT needs.
type Tester interface {
	Helper()
	Cleanup(func())
}

// Server is one simulated Gitea instance. Safe for concurrent use.
type Server struct {
	opts Options

	mu        sync.RWMutex
	revisions map[string]*revision
	heads     map[string]string // branch → head commit ID
	commits   []Commit

	statsMu  sync.Mutex
	requests map[string]int
	inFlight int
	peak     int

	engine *gin.Engine
	url    string
}

// New creates a Server with an empty repository on the default branch.
func New(opts Options) *Server {
	if opts.Owner == "" {
		opts.Owner = "acme"
	}
	if opts.Name == "" {
		opts.Name = "site"
	}
	if opts.Branch == "" {
		opts.Branch = "master"
	}
	if opts.User.Login == "" {
		opts.User = User{ID: 1, Login: "vellum-bot", FullName: "Vellum Bot", Email: "bot@vellum.local"}
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		opts:      opts,
		revisions: make(map[string]*revision),
		heads:     make(map[string]string),
		requests:  make(map[string]int),
		engine:    gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.commitSnapshot(opts.Branch, "Initial commit", "", map[string]fileState{})
	s.routes()
	return s
}

// RunT starts a Server on a random local port and shuts it down when the
// test finishes.
func RunT(t Tester, opts Options) *Server {
	t.Helper()
	s := New(opts)
	srv := httptest.NewServer(s.engine)
	t.Cleanup(srv.Close)
	s.url = srv.URL
	return s
}

// Router returns the underlying engine, for mounting extra routes or serving
// outside of tests.
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// URL is the base URL of the test listener. Empty unless started via RunT.
func (s *Server) URL() string {
	return s.url
}

// APIRoot is the API base of the test listener, e.g. for a client's
// configuration.
func (s *Server) APIRoot() string {
	return s.url + "/api/v1"
}

// FullName returns "owner/name" for the served repository.
func (s *Server) FullName() string {
	return s.opts.Owner + "/" + s.opts.Name
}

// Seed writes files to the default branch as a single commit and returns the
// commit ID. Values are raw file bodies, not base64.
func (s *Server) Seed(files map[string]string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	head := s.heads[s.opts.Branch]
	next := copyFiles(s.revisions[head].files)
	for p, body := range files {
		next[p] = fileState{sha: BlobSHA([]byte(body)), data: []byte(body)}
	}
	return s.commitSnapshot(s.opts.Branch, "Seed content", head, next).id
}

// SetFile writes one file to the default branch as its own commit and
// returns the commit ID.
func (s *Server) SetFile(path string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	head := s.heads[s.opts.Branch]
	next := copyFiles(s.revisions[head].files)
	next[path] = fileState{sha: BlobSHA(data), data: data}
	return s.commitSnapshot(s.opts.Branch, "Set "+path, head, next).id
}

// FileData returns the current body of path on the given branch; branch ""
// means the default branch.
func (s *Server) FileData(branch, path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rev, ok := s.resolveRef(branch)
	if !ok {
		return nil, false
	}
	f, ok := rev.files[path]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(f.data))
	copy(out, f.data)
	return out, true
}

// Files returns every file at ref keyed by path; ref "" means the default
// branch head.
func (s *Server) Files(ref string) map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rev, ok := s.resolveRef(ref)
	if !ok {
		return nil
	}
	out := make(map[string][]byte, len(rev.files))
	for p, f := range rev.files {
		data := make([]byte, len(f.data))
		copy(data, f.data)
		out[p] = data
	}
	return out
}

// Head returns the head commit ID of branch; branch "" means the default
// branch.
func (s *Server) Head(branch string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if branch == "" {
		branch = s.opts.Branch
	}
	id, ok := s.heads[branch]
	return id, ok
}

// Commits returns every commit made so far, oldest first.
func (s *Server) Commits() []Commit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Commit, len(s.commits))
	copy(out, s.commits)
	return out
}

// Requests returns how many calls the named endpoint family has served:
// "branch", "tree", "contents", "commit", "repo" or "user".
func (s *Server) Requests(family string) int {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.requests[family]
}

// PeakInFlight returns the highest number of requests the server has handled
// at once.
func (s *Server) PeakInFlight() int {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.peak
}
