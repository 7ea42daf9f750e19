package gitea

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/vellumcms/vellum/pkg/gitrepo"
)

// ReadFile fetches one file through the contents API and decodes its payload.
// A missing path surfaces as gitrepo.NotFoundError so callers can treat
// absence as a recoverable condition.
func (c *Client) ReadFile(ctx context.Context, filePath string, opts gitrepo.ReadOptions) (*gitrepo.FileContent, error) {
	cr, err := c.getContents(ctx, filePath, opts.Ref, opts.AllowCached)
	if err != nil {
		return nil, err
	}
	if cr.Type != "file" {
		return nil, fmt.Errorf("read %s: entry is a %s, not a file", filePath, cr.Type)
	}

	data, err := decodeContent(cr)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	return &gitrepo.FileContent{Path: cr.Path, ContentID: cr.SHA, Data: data}, nil
}

// StatFile probes the current blob SHA at filePath on ref. A missing path
// returns gitrepo.NotFoundError; the commit batcher reads that as "no prior
// version" when classifying create-vs-update.
func (c *Client) StatFile(ctx context.Context, filePath, ref string) (string, error) {
	cr, err := c.getContents(ctx, filePath, ref, false)
	if err != nil {
		return "", err
	}
	return cr.SHA, nil
}

func (c *Client) getContents(ctx context.Context, filePath, ref string, allowCache bool) (*contentsResponse, error) {
	if ref == "" {
		ref = c.branch
	}
	r := request{
		path:       fmt.Sprintf("/repos/%s/%s/contents/%s", c.owner, c.name, escapePath(filePath)),
		query:      url.Values{"ref": {ref}},
		allowCache: allowCache,
	}
	r.method = http.MethodGet

	resp, err := c.do(ctx, r)
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, gitrepo.NotFoundError{Path: filePath}
		}
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read contents response for %s: %w", filePath, err)
	}
	// The contents endpoint answers with an array when the path is a directory.
	if len(data) > 0 && data[0] == '[' {
		return nil, fmt.Errorf("read %s: entry is a directory, not a file", filePath)
	}

	var cr contentsResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return nil, fmt.Errorf("decode contents response for %s: %w", filePath, err)
	}
	if cr.SHA == "" {
		return nil, fmt.Errorf("contents response for %s carries no sha", filePath)
	}
	return &cr, nil
}

// decodeContent converts the wire payload to raw bytes. Gitea base64-encodes
// file bodies; an empty encoding means the body is already raw.
func decodeContent(cr *contentsResponse) ([]byte, error) {
	if cr.Content == nil {
		return nil, errors.New("contents response carries no content")
	}
	enc := ""
	if cr.Encoding != nil {
		enc = *cr.Encoding
	}

	switch enc {
	case "base64":
		data, err := base64.StdEncoding.DecodeString(*cr.Content)
		if err != nil {
			return nil, fmt.Errorf("decode base64 content: %w", err)
		}
		return data, nil
	case "":
		return []byte(*cr.Content), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}
}
