package gitea

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vellumcms/vellum/pkg/gitrepo"
)

// Repo fetches repository metadata, including the token's permissions on it.
// Statuses that mean "you cannot use this repository" (401, 403, 404) map to
// gitrepo.AuthorizationError with a message the façade can show verbatim.
func (c *Client) Repo(ctx context.Context) (*gitrepo.RepoInfo, error) {
	var r repositoryResponse
	p := fmt.Sprintf("/repos/%s/%s", c.owner, c.name)
	if err := c.getJSON(ctx, request{path: p}, &r); err != nil {
		switch statusOf(err) {
		case http.StatusUnauthorized:
			return nil, gitrepo.AuthorizationError{Repo: c.fullName(), Reason: "the token was rejected"}
		case http.StatusForbidden:
			return nil, gitrepo.AuthorizationError{Repo: c.fullName(), Reason: "access is denied"}
		case http.StatusNotFound:
			return nil, gitrepo.AuthorizationError{Repo: c.fullName(), Reason: "it does not exist or is not visible to the token"}
		}
		return nil, err
	}

	return &gitrepo.RepoInfo{
		FullName:      r.FullName,
		DefaultBranch: r.DefaultBranch,
		Permissions: gitrepo.Permissions{
			Admin: r.Permissions.Admin,
			Push:  r.Permissions.Push,
			Pull:  r.Permissions.Pull,
		},
	}, nil
}

// CurrentUser fetches the profile of the account the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*gitrepo.User, error) {
	var u userResponse
	if err := c.getJSON(ctx, request{path: "/user"}, &u); err != nil {
		switch statusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, gitrepo.AuthorizationError{Repo: c.fullName(), Reason: "the token was rejected"}
		}
		return nil, err
	}

	return &gitrepo.User{
		ID:        u.ID,
		Login:     u.Login,
		FullName:  u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}, nil
}
