// Package gitea implements the gitrepo port against the Gitea REST API (v1).
//
// One Client is scoped to a single repository on a single host. All requests
// carry the configured token, disable intermediary caching unless the caller
// opted in, and retry transient failures with exponential backoff before
// surfacing a typed APIError.
package gitea

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/oauth2"

	"github.com/vellumcms/vellum/pkg/gitrepo"
	"github.com/vellumcms/vellum/pkg/logging"
)

// DefaultAPIRoot is the API root of the public Gitea host.
const DefaultAPIRoot = "https://gitea.com/api/v1"

const (
	defaultBranch   = "master"
	defaultPageSize = 100
	defaultMaxTries = 4
)

// Options configures a Client.
type Options struct {
	// APIRoot is the base URL of the Gitea API, e.g. "https://gitea.com/api/v1"
	// or "http://localhost:9090/api/v1" for a mock host. Defaults to DefaultAPIRoot.
	APIRoot string
	// Repo is the target repository in "owner/name" form. Required.
	Repo string
	// Branch is the branch operations default to. Defaults to "master".
	Branch string
	// Token is a personal access token. Empty means anonymous access.
	Token string
	// PageSize is the per-page entry count for tree listings. Defaults to 100.
	PageSize int
	// MaxTries bounds attempts per request, including the first. Defaults to 4.
	MaxTries int
	// Logger receives retry diagnostics. Optional.
	Logger *slog.Logger
	// HTTPClient overrides the transport. When set the caller owns
	// authentication; Token is ignored.
	HTTPClient *http.Client
}

// Client talks to one repository through the Gitea API.
// It implicitly satisfies gitrepo.Client.
type Client struct {
	apiRoot  string
	owner    string
	name     string
	branch   string
	pageSize int
	maxTries int
	http     *http.Client
	log      *slog.Logger
}

var _ gitrepo.Client = (*Client)(nil)

// New creates a Client for the repository named in opts.
func New(opts Options) (*Client, error) {
	owner, name, ok := strings.Cut(opts.Repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("repo must be in owner/name form, got %q", opts.Repo)
	}

	apiRoot := strings.TrimRight(opts.APIRoot, "/")
	if apiRoot == "" {
		apiRoot = DefaultAPIRoot
	}
	branch := opts.Branch
	if branch == "" {
		branch = defaultBranch
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxTries := opts.MaxTries
	if maxTries <= 0 {
		maxTries = defaultMaxTries
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		if opts.Token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
			httpClient = oauth2.NewClient(context.Background(), ts)
		} else {
			httpClient = &http.Client{}
		}
	}

	return &Client{
		apiRoot:  apiRoot,
		owner:    owner,
		name:     name,
		branch:   branch,
		pageSize: pageSize,
		maxTries: maxTries,
		http:     httpClient,
		log:      logging.Component(opts.Logger, "gitea"),
	}, nil
}

// Branch returns the branch operations default to.
func (c *Client) Branch() string { return c.branch }

// fullName returns the repository in "owner/name" form.
func (c *Client) fullName() string { return c.owner + "/" + c.name }

// request is one logical API call before transport concerns are applied.
type request struct {
	method string
	path   string // under the API root, e.g. "/repos/o/r/contents"
	query  url.Values
	body   []byte // JSON; nil for body-less methods
	// allowCache skips the Cache-Control: no-cache directive. Only safe for
	// reads pinned to immutable refs.
	allowCache bool
}

// do executes r with retry. Transient failures (network errors, 408, 429,
// 5xx) are retried with exponential backoff up to maxTries attempts; any
// other non-2xx status is returned immediately as an APIError. The caller
// owns the response body on success.
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	u := c.apiRoot + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	attempt := func() (*http.Response, error) {
		var rd io.Reader = http.NoBody
		if r.body != nil {
			rd = bytes.NewReader(r.body)
		}
		req, err := http.NewRequestWithContext(ctx, r.method, u, rd)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		if r.body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if !r.allowCache {
			req.Header.Set("Cache-Control", "no-cache")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", r.method, u, err)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		apiErr := readAPIError(resp, u)
		if retryable(resp.StatusCode) {
			return nil, apiErr
		}
		return nil, backoff.Permanent(apiErr)
	}

	resp, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(c.maxTries)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.log.Debug("retrying request", "method", r.method, "url", u, "wait", wait, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// getJSON performs a GET and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, r request, out any) error {
	r.method = http.MethodGet
	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", r.path, err)
	}
	return nil
}

// postJSON performs a POST with a JSON body and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}
	resp, err := c.do(ctx, request{method: http.MethodPost, path: path, body: data})
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func retryable(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

// readAPIError drains resp into an APIError. Gitea error bodies are
// {"message": "..."}; anything else is kept verbatim.
func readAPIError(resp *http.Response, url string) APIError {
	defer resp.Body.Close() //nolint:errcheck

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	var body struct {
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		msg = body.Message
	}
	return APIError{StatusCode: resp.StatusCode, Message: msg, URL: url}
}

// statusOf extracts the HTTP status from an APIError in err's chain, or 0.
func statusOf(err error) int {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// escapePath URL-escapes each segment of a repository path, keeping the
// separators.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
