package content_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"path"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vellumcms/vellum/apps/server/internal/content"
	"github.com/vellumcms/vellum/pkg/backend"
	"github.com/vellumcms/vellum/pkg/gitrepo"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ─── Stub git client ──────────────────────────────────────────────────────────

// stubClient implements gitrepo.Client with overridable behavior per method.
// Methods without a stub return an error so tests fail loudly on unexpected
// calls.
type stubClient struct {
	resolveFn func(ctx context.Context, branch string) (string, error)
	listFn    func(ctx context.Context, opts gitrepo.ListOptions) ([]gitrepo.TreeEntry, error)
	readFn    func(ctx context.Context, path string, opts gitrepo.ReadOptions) (*gitrepo.FileContent, error)
	statFn    func(ctx context.Context, path, ref string) (string, error)
	commitFn  func(ctx context.Context, batch gitrepo.CommitBatch) (string, error)
	repoFn    func(ctx context.Context) (*gitrepo.RepoInfo, error)
	userFn    func(ctx context.Context) (*gitrepo.User, error)
}

var errNotStubbed = errors.New("stubClient: method not stubbed")

func (s *stubClient) ResolveBranch(ctx context.Context, branch string) (string, error) {
	if s.resolveFn == nil {
		return "", errNotStubbed
	}
	return s.resolveFn(ctx, branch)
}

func (s *stubClient) ListFiles(ctx context.Context, opts gitrepo.ListOptions) ([]gitrepo.TreeEntry, error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(ctx, opts)
}

func (s *stubClient) ReadFile(ctx context.Context, path string, opts gitrepo.ReadOptions) (*gitrepo.FileContent, error) {
	if s.readFn == nil {
		return nil, errNotStubbed
	}
	return s.readFn(ctx, path, opts)
}

func (s *stubClient) StatFile(ctx context.Context, path, ref string) (string, error) {
	if s.statFn == nil {
		return "", errNotStubbed
	}
	return s.statFn(ctx, path, ref)
}

func (s *stubClient) Commit(ctx context.Context, batch gitrepo.CommitBatch) (string, error) {
	if s.commitFn == nil {
		return "", errNotStubbed
	}
	return s.commitFn(ctx, batch)
}

func (s *stubClient) Repo(ctx context.Context) (*gitrepo.RepoInfo, error) {
	if s.repoFn == nil {
		return nil, errNotStubbed
	}
	return s.repoFn(ctx)
}

func (s *stubClient) CurrentUser(ctx context.Context) (*gitrepo.User, error) {
	if s.userFn == nil {
		return nil, errNotStubbed
	}
	return s.userFn(ctx)
}

var _ gitrepo.Client = (*stubClient)(nil)

// ─── Test server builder ──────────────────────────────────────────────────────

type testServer struct {
	router *gin.Engine
	client *stubClient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{client: &stubClient{}}
	b := backend.New(ts.client, nil, backend.Options{}, nil)
	r := gin.New()
	content.RegisterRoutes(r, b, slog.Default())
	ts.router = r
	return ts
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	return ts.doCtx(context.Background(), method, path, body)
}

func (ts *testServer) doCtx(ctx context.Context, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequestWithContext(ctx, method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response body %q: %v", w.Body.String(), err)
	}
	return out
}

// blobEntry builds a tree entry for p with a deterministic content ID.
func blobEntry(p string) gitrepo.TreeEntry {
	return gitrepo.TreeEntry{
		Path:      p,
		Name:      path.Base(p),
		Type:      gitrepo.EntryBlob,
		ContentID: "sha-" + p,
		Size:      int64(len(p)),
	}
}

// readFromFiles stubs ReadFile over a fixed path→body map.
func readFromFiles(files map[string]string) func(context.Context, string, gitrepo.ReadOptions) (*gitrepo.FileContent, error) {
	return func(_ context.Context, path string, _ gitrepo.ReadOptions) (*gitrepo.FileContent, error) {
		body, ok := files[path]
		if !ok {
			return nil, gitrepo.NotFoundError{Path: path}
		}
		return &gitrepo.FileContent{Path: path, ContentID: "sha-" + path, Data: []byte(body)}, nil
	}
}
