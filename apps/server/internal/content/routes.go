// Package content is the HTTP face of the backend façade: it translates the
// content API's JSON bodies into backend calls and backend errors into
// status codes.
package content

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vellumcms/vellum/pkg/backend"
)

// Handler translates HTTP requests into calls on the backend façade.
type Handler struct {
	backend *backend.Backend
	log     *slog.Logger
}

// RegisterRoutes mounts the content API onto the given Gin engine.
func RegisterRoutes(r *gin.Engine, b *backend.Backend, log *slog.Logger) {
	h := &Handler{backend: b, log: log}

	// Entries
	r.GET("/api/entries", h.ListEntries)
	r.GET("/api/entries/*path", h.Entry)
	r.POST("/api/entries", h.Persist)
	r.DELETE("/api/entries", h.Delete)

	// Session
	r.GET("/api/user", h.User)
	r.GET("/api/access", h.Access)

	// Editorial workflow (capability surface only)
	r.GET("/api/workflow/entries", h.UnpublishedEntries)
	r.POST("/api/workflow/publish", h.Publish)

	r.GET("/healthz", h.Health)
}

// Health reports process liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
