package gitea_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vellumcms/vellum/pkg/gitea"
)

// newTestClient points a Client with a single attempt per request at srv.
// Error-path tests stay fast that way; retry behavior has its own helper.
func newTestClient(t *testing.T, handler http.Handler) *gitea.Client {
	t.Helper()
	return newTestClientTries(t, handler, 1)
}

func newTestClientTries(t *testing.T, handler http.Handler, maxTries int) *gitea.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := gitea.New(gitea.Options{
		APIRoot:  srv.URL + "/api/v1",
		Repo:     "acme/site",
		Branch:   "master",
		Token:    "t0ken",
		PageSize: 10,
		MaxTries: maxTries,
	})
	require.NoError(t, err)
	return c
}

const masterBranchJSON = `{"name":"master","commit":{"id":"c0ffee42"}}`

type fakeTreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int64  `json:"size"`
}

func blob(path, sha string) fakeTreeEntry {
	return fakeTreeEntry{Path: path, Type: "blob", SHA: sha, Size: int64(len(path))}
}

func treePageJSON(t *testing.T, truncated bool, entries ...fakeTreeEntry) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"sha":         "c0ffee42",
		"truncated":   truncated,
		"tree":        entries,
		"total_count": len(entries),
	})
	require.NoError(t, err)
	return body
}
