package gitea

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/vellumcms/vellum/pkg/gitrepo"
)

// Commit applies every change in the batch as exactly one commit, using the
// batch contents endpoint. The host writes all files under a single tree and
// commit object, so there is no partially-applied outcome: on any error
// nothing has been written.
//
// Updates and deletes must carry the PriorContentID read before the write;
// the host rejects the whole batch with a conflict when a blob moved in the
// meantime, which surfaces here as gitrepo.ConflictError.
func (c *Client) Commit(ctx context.Context, batch gitrepo.CommitBatch) (string, error) {
	if len(batch.Changes) == 0 {
		return "", errors.New("commit: batch is empty")
	}

	branch := batch.Branch
	if branch == "" {
		branch = c.branch
	}
	opts := changeFilesOptions{
		Message:   batch.Message,
		Branch:    branch,
		NewBranch: batch.NewBranch,
		Files:     make([]changeFileOperation, 0, len(batch.Changes)),
	}
	for _, ch := range batch.Changes {
		op, err := wireOperation(ch)
		if err != nil {
			return "", fmt.Errorf("commit: %w", err)
		}
		opts.Files = append(opts.Files, op)
	}

	var fr filesResponse
	p := fmt.Sprintf("/repos/%s/%s/contents", c.owner, c.name)
	if err := c.postJSON(ctx, p, opts, &fr); err != nil {
		return "", c.commitError(batch, err)
	}
	if fr.Commit.SHA == "" {
		return "", errors.New("commit: response carries no commit sha")
	}

	c.log.Info("committed batch",
		"branch", branch, "files", len(opts.Files), "commit", fr.Commit.SHA)
	return fr.Commit.SHA, nil
}

// wireOperation maps one Change to the wire shape, base64-encoding the
// payload. Moves ride on the update operation with from_path set.
func wireOperation(ch gitrepo.Change) (changeFileOperation, error) {
	encode := func() string { return base64.StdEncoding.EncodeToString(ch.Content) }

	switch ch.Action {
	case gitrepo.ActionCreate:
		return changeFileOperation{Operation: "create", Path: ch.Path, Content: encode()}, nil
	case gitrepo.ActionUpdate:
		if ch.PriorContentID == "" {
			return changeFileOperation{}, fmt.Errorf("update %s without prior content id", ch.Path)
		}
		return changeFileOperation{Operation: "update", Path: ch.Path, Content: encode(), SHA: ch.PriorContentID}, nil
	case gitrepo.ActionDelete:
		if ch.PriorContentID == "" {
			return changeFileOperation{}, fmt.Errorf("delete %s without prior content id", ch.Path)
		}
		return changeFileOperation{Operation: "delete", Path: ch.Path, SHA: ch.PriorContentID}, nil
	case gitrepo.ActionMove:
		if ch.FromPath == "" {
			return changeFileOperation{}, fmt.Errorf("move to %s without a source path", ch.Path)
		}
		if ch.PriorContentID == "" {
			return changeFileOperation{}, fmt.Errorf("move %s without prior content id", ch.FromPath)
		}
		return changeFileOperation{Operation: "update", Path: ch.Path, FromPath: ch.FromPath, Content: encode(), SHA: ch.PriorContentID}, nil
	default:
		return changeFileOperation{}, fmt.Errorf("unknown change action %q for %s", ch.Action, ch.Path)
	}
}

// commitError maps batch rejection statuses onto the gitrepo error types.
// 409 is always a conflict; 422 is one too when the batch carried prior
// content ids, since a stale sha is the common cause.
func (c *Client) commitError(batch gitrepo.CommitBatch, err error) error {
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.StatusCode {
	case http.StatusConflict:
		return gitrepo.ConflictError{Message: apiErr.Message}
	case http.StatusUnprocessableEntity:
		if hasPriorIDs(batch) {
			return gitrepo.ConflictError{Message: apiErr.Message}
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return gitrepo.AuthorizationError{Repo: c.fullName(), Reason: apiErr.Message}
	case http.StatusNotFound:
		return gitrepo.NotFoundError{Path: c.fullName()}
	}
	return err
}

func hasPriorIDs(batch gitrepo.CommitBatch) bool {
	for _, ch := range batch.Changes {
		if ch.PriorContentID != "" {
			return true
		}
	}
	return false
}
