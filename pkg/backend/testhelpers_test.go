package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vellumcms/vellum/pkg/backend"
	"github.com/vellumcms/vellum/pkg/cache"
	"github.com/vellumcms/vellum/pkg/gitrepo"
)

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

func newBackend(t *testing.T, client gitrepo.Client) *backend.Backend {
	t.Helper()
	return backend.New(client, nil, backend.Options{}, nil)
}

func newCachedBackend(t *testing.T, client gitrepo.Client, store cache.Store) *backend.Backend {
	t.Helper()
	t.Cleanup(func() { _ = store.Close() })
	return backend.New(client, store, backend.Options{}, nil)
}

// readFromFiles stubs ReadFile over a path → content map.
func readFromFiles(files map[string]string) func(context.Context, string, gitrepo.ReadOptions) (*gitrepo.FileContent, error) {
	return func(_ context.Context, path string, _ gitrepo.ReadOptions) (*gitrepo.FileContent, error) {
		body, ok := files[path]
		if !ok {
			return nil, gitrepo.NotFoundError{Path: path}
		}
		return &gitrepo.FileContent{Path: path, ContentID: "sha-" + path, Data: []byte(body)}, nil
	}
}
