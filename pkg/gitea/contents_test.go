package gitea_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellumcms/vellum/pkg/gitrepo"
)

func contentsJSON(t *testing.T, path, sha string, data []byte) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"name":     path,
		"path":     path,
		"sha":      sha,
		"type":     "file",
		"size":     len(data),
		"encoding": "base64",
		"content":  base64.StdEncoding.EncodeToString(data),
	})
	require.NoError(t, err)
	return string(body)
}

// ─── Reading ──────────────────────────────────────────────────────────────────

func TestReadFile_DecodesBase64Payload(t *testing.T) {
	want := "héllo wörld — 你好\n"
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, contentsJSON(t, "posts/a.md", "sha-a", []byte(want)))
	}))

	fc, err := c.ReadFile(context.Background(), "posts/a.md", gitrepo.ReadOptions{})

	require.NoError(t, err)
	assert.Equal(t, want, fc.Text())
	assert.Equal(t, "sha-a", fc.ContentID)
	assert.Equal(t, "posts/a.md", fc.Path)
}

func TestReadFile_DefaultsRefToConfiguredBranch(t *testing.T) {
	var gotRef string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRef = r.URL.Query().Get("ref")
		fmt.Fprint(w, contentsJSON(t, "posts/a.md", "sha-a", []byte("hi")))
	}))

	_, err := c.ReadFile(context.Background(), "posts/a.md", gitrepo.ReadOptions{})

	require.NoError(t, err)
	assert.Equal(t, "master", gotRef)
}

func TestReadFile_MissingPath_ReturnsNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"object does not exist"}`)
	}))

	_, err := c.ReadFile(context.Background(), "posts/gone.md", gitrepo.ReadOptions{})

	var notFound gitrepo.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "posts/gone.md", notFound.Path)
}

func TestReadFile_DirectoryPath_ReturnsError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name":"a.md","path":"posts/a.md","type":"file"}]`)
	}))

	_, err := c.ReadFile(context.Background(), "posts", gitrepo.ReadOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestReadFile_UnknownEncoding_ReturnsError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"a.bin","path":"a.bin","sha":"s","type":"file","size":1,"encoding":"base32","content":"ME======"}`)
	}))

	_, err := c.ReadFile(context.Background(), "a.bin", gitrepo.ReadOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "base32")
}

// ─── Probing ──────────────────────────────────────────────────────────────────

func TestStatFile_ReturnsCurrentSHA(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, contentsJSON(t, "posts/a.md", "abc123", []byte("body")))
	}))

	sha, err := c.StatFile(context.Background(), "posts/a.md", "master")

	require.NoError(t, err)
	assert.Equal(t, "abc123", sha)
}

func TestStatFile_MissingPath_ReturnsNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"object does not exist"}`)
	}))

	_, err := c.StatFile(context.Background(), "posts/new.md", "master")

	var notFound gitrepo.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "posts/new.md", notFound.Path)
}

func TestStatFile_EscapesPathSegments(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, contentsJSON(t, "posts/hello world.md", "sha-h", []byte("x")))
	}))

	_, err := c.StatFile(context.Background(), "posts/hello world.md", "master")

	require.NoError(t, err)
	assert.Contains(t, gotPath, "/contents/posts/hello%20world.md")
}
