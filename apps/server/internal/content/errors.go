package content

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vellumcms/vellum/pkg/backend"
	"github.com/vellumcms/vellum/pkg/gitrepo"
)

// respondError maps backend failures onto HTTP statuses. Batch failures are
// inspected through their per-file causes, so a delete of a missing path
// still surfaces as 404. Anything unrecognized is an upstream git-host
// failure and reported as such.
func (h *Handler) respondError(c *gin.Context, op string, err error) {
	var (
		notFound    gitrepo.NotFoundError
		conflict    gitrepo.ConflictError
		authz       gitrepo.AuthorizationError
		lock        backend.LockError
		unsupported backend.UnsupportedError
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &authz):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &lock):
		c.JSON(http.StatusLocked, gin.H{"error": err.Error()})
	case errors.As(err, &unsupported):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	default:
		h.log.Error("backend call failed", "op", op, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
