package gitea_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellumcms/vellum/pkg/gitea"
	"github.com/vellumcms/vellum/pkg/giteatest"
	"github.com/vellumcms/vellum/pkg/gitrepo"
)

// These tests run the client against a simulated host end to end, wire format
// included, instead of canned per-endpoint handlers.

func newSimClient(t *testing.T, srv *giteatest.Server, opts gitea.Options) *gitea.Client {
	t.Helper()
	opts.APIRoot = srv.APIRoot()
	if opts.Repo == "" {
		opts.Repo = srv.FullName()
	}
	client, err := gitea.New(opts)
	require.NoError(t, err)
	return client
}

func TestRoundTrip_ListReadCommitRead(t *testing.T) {
	srv := giteatest.RunT(t, giteatest.Options{Token: "t0ken"})
	srv.Seed(map[string]string{
		"posts/hello.md": "# Hello",
		"posts/old.md":   "original",
	})
	client := newSimClient(t, srv, gitea.Options{Token: "t0ken"})
	ctx := context.Background()

	entries, err := client.ListFiles(ctx, gitrepo.ListOptions{Recursive: true})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "posts/hello.md", entries[0].Path)

	fc, err := client.ReadFile(ctx, "posts/hello.md", gitrepo.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "# Hello", fc.Text())

	oldSHA, err := client.StatFile(ctx, "posts/old.md", "")
	require.NoError(t, err)
	require.Equal(t, giteatest.BlobSHA([]byte("original")), oldSHA)

	commitSHA, err := client.Commit(ctx, gitrepo.CommitBatch{
		Message: "Edit content",
		Changes: []gitrepo.Change{
			{Path: "posts/new.md", Action: gitrepo.ActionCreate, Content: []byte("fresh")},
			{Path: "posts/old.md", Action: gitrepo.ActionUpdate, Content: []byte("updated"), PriorContentID: oldSHA},
		},
	})
	require.NoError(t, err)
	head, ok := srv.Head("")
	require.True(t, ok)
	assert.Equal(t, head, commitSHA)

	updated, err := client.ReadFile(ctx, "posts/old.md", gitrepo.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Text())

	created, err := client.ReadFile(ctx, "posts/new.md", gitrepo.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "fresh", created.Text())
}

func TestRoundTrip_PaginatedListingMakesOnePageRequestPerPage(t *testing.T) {
	srv := giteatest.RunT(t, giteatest.Options{})
	srv.Seed(map[string]string{
		"a.md": "a", "b.md": "b", "c.md": "c", "d.md": "d", "e.md": "e",
	})
	client := newSimClient(t, srv, gitea.Options{PageSize: 2})

	entries, err := client.ListFiles(context.Background(), gitrepo.ListOptions{Recursive: true})
	require.NoError(t, err)
	assert.Len(t, entries, 5)
	assert.Equal(t, 3, srv.Requests("tree"))
	assert.Equal(t, 1, srv.Requests("branch"))
}

func TestRoundTrip_StaleShaCommitIsRejectedAtomically(t *testing.T) {
	srv := giteatest.RunT(t, giteatest.Options{})
	srv.Seed(map[string]string{"posts/old.md": "original"})
	client := newSimClient(t, srv, gitea.Options{})
	headBefore, _ := srv.Head("")

	_, err := client.Commit(context.Background(), gitrepo.CommitBatch{
		Message: "Stale edit",
		Changes: []gitrepo.Change{
			{Path: "posts/extra.md", Action: gitrepo.ActionCreate, Content: []byte("extra")},
			{Path: "posts/old.md", Action: gitrepo.ActionUpdate, Content: []byte("stale"), PriorContentID: giteatest.BlobSHA([]byte("some other content"))},
		},
	})
	require.Error(t, err)

	var conflict gitrepo.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "sha does not match")

	headAfter, _ := srv.Head("")
	assert.Equal(t, headBefore, headAfter)
	_, created := srv.FileData("", "posts/extra.md")
	assert.False(t, created)
}

func TestRoundTrip_MoveRenamesFile(t *testing.T) {
	srv := giteatest.RunT(t, giteatest.Options{})
	srv.Seed(map[string]string{"posts/2024-draft.md": "draft body"})
	client := newSimClient(t, srv, gitea.Options{})
	ctx := context.Background()

	sha, err := client.StatFile(ctx, "posts/2024-draft.md", "")
	require.NoError(t, err)

	_, err = client.Commit(ctx, gitrepo.CommitBatch{
		Message: "Publish draft under final name",
		Changes: []gitrepo.Change{{
			Path:           "posts/2024-final.md",
			Action:         gitrepo.ActionMove,
			FromPath:       "posts/2024-draft.md",
			Content:        []byte("draft body"),
			PriorContentID: sha,
		}},
	})
	require.NoError(t, err)

	_, err = client.ReadFile(ctx, "posts/2024-draft.md", gitrepo.ReadOptions{})
	var notFound gitrepo.NotFoundError
	require.ErrorAs(t, err, &notFound)

	moved, err := client.ReadFile(ctx, "posts/2024-final.md", gitrepo.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "draft body", moved.Text())
}

func TestRoundTrip_TokenAuthenticatesAgainstHost(t *testing.T) {
	srv := giteatest.RunT(t, giteatest.Options{
		Token: "s3cret",
		User:  giteatest.User{ID: 9, Login: "mika"},
	})
	client := newSimClient(t, srv, gitea.Options{Token: "s3cret"})

	user, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mika", user.Login)

	unauthenticated := newSimClient(t, srv, gitea.Options{})
	_, err = unauthenticated.CurrentUser(context.Background())
	var authErr gitrepo.AuthorizationError
	require.ErrorAs(t, err, &authErr)
}
