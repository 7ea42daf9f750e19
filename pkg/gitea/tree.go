package gitea

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/vellumcms/vellum/pkg/gitrepo"
)

// maxTreePages bounds one listing regardless of what the host's truncation
// flag claims. At the default page size this covers 100k tree entries.
const maxTreePages = 1000

// ResolveBranch resolves a branch name to the commit SHA it points at. The
// result is a snapshot; the branch may move immediately after.
func (c *Client) ResolveBranch(ctx context.Context, branch string) (string, error) {
	var br branchResponse
	p := fmt.Sprintf("/repos/%s/%s/branches/%s", c.owner, c.name, url.PathEscape(branch))
	if err := c.getJSON(ctx, request{path: p}, &br); err != nil {
		if statusOf(err) == http.StatusNotFound {
			return "", gitrepo.NotFoundError{Path: branch}
		}
		return "", fmt.Errorf("resolve branch %s: %w", branch, err)
	}
	if br.Commit.ID == "" {
		return "", fmt.Errorf("resolve branch %s: response carries no commit id", branch)
	}
	return br.Commit.ID, nil
}

// ListFiles walks the repository tree at opts.Ref (the configured branch when
// empty) and returns the blobs under opts.Prefix.
//
// The ref is resolved to a commit SHA exactly once, so every page of the
// listing observes the same tree even while the branch moves. Pages are
// fetched with a strictly increasing page index until the host reports
// truncated=false; a listing still truncated after maxTreePages fails with
// TooManyPagesError rather than looping on.
func (c *Client) ListFiles(ctx context.Context, opts gitrepo.ListOptions) ([]gitrepo.TreeEntry, error) {
	ref := opts.Ref
	if ref == "" {
		ref = c.branch
	}
	sha, err := c.ResolveBranch(ctx, ref)
	if err != nil {
		return nil, err
	}

	prefix := strings.Trim(opts.Prefix, "/")
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	treePath := fmt.Sprintf("/repos/%s/%s/git/trees/%s", c.owner, c.name, sha)

	var entries []gitrepo.TreeEntry
	for page := 1; ; page++ {
		if page > maxTreePages {
			return nil, TooManyPagesError{Ref: ref, Pages: maxTreePages}
		}

		q := url.Values{
			"recursive": {"true"},
			"page":      {strconv.Itoa(page)},
			"per_page":  {strconv.Itoa(pageSize)},
		}
		var tr treeResponse
		if err := c.getJSON(ctx, request{path: treePath, query: q}, &tr); err != nil {
			return nil, fmt.Errorf("list tree page %d: %w", page, err)
		}

		for _, e := range tr.Entries {
			if e.Type != string(gitrepo.EntryBlob) {
				continue
			}
			if !gitrepo.UnderPrefix(e.Path, prefix) {
				continue
			}
			if !opts.Recursive && gitrepo.PathDepth(e.Path) != childDepth(prefix) {
				continue
			}
			entries = append(entries, gitrepo.TreeEntry{
				Path:      e.Path,
				Name:      path.Base(e.Path),
				Type:      gitrepo.EntryBlob,
				ContentID: e.SHA,
				Size:      e.Size,
			})
		}

		if !tr.Truncated {
			return entries, nil
		}
	}
}

// childDepth is the segment depth of a direct child of dir. Depth is compared
// segment-wise, never by string length: "posts/a.md" is a direct child of
// "posts", "posts/sub/b.md" is not.
func childDepth(dir string) int {
	if dir == "" {
		return 1
	}
	return gitrepo.PathDepth(dir) + 1
}
