package content

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vellumcms/vellum/pkg/api"
	"github.com/vellumcms/vellum/pkg/gitrepo"
)

// User reports the git-host account behind the configured token. An
// authorization failure here means the token itself is bad, so it maps to
// 401 rather than the repository-scoped 403.
func (h *Handler) User(c *gin.Context) {
	u, err := h.backend.CurrentUser(c.Request.Context())
	if err != nil {
		var authz gitrepo.AuthorizationError
		if errors.As(err, &authz) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.respondError(c, "current user", err)
		return
	}

	c.JSON(http.StatusOK, api.UserResponse{
		ID:        u.ID,
		Login:     u.Login,
		Name:      u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	})
}

// Access reports write access instead of gating on it, so front ends can
// show editors the remediation message. A repository the token cannot see at
// all still answers 200 with canWrite false.
func (h *Handler) Access(c *gin.Context) {
	ok, err := h.backend.HasWriteAccess(c.Request.Context())
	if err != nil {
		var authz gitrepo.AuthorizationError
		if errors.As(err, &authz) {
			c.JSON(http.StatusOK, api.AccessResponse{CanWrite: false, Message: err.Error()})
			return
		}
		h.respondError(c, "write access", err)
		return
	}

	resp := api.AccessResponse{CanWrite: ok}
	if !ok {
		resp.Message = "the configured token can read the repository but cannot push to it; ask a repository owner for write access"
	}
	c.JSON(http.StatusOK, resp)
}
