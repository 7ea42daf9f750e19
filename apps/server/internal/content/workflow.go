package content

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vellumcms/vellum/pkg/api"
)

// UnpublishedEntries handles GET /api/workflow/entries. Vellum carries no
// editorial workflow; the typed refusal comes back as 501 so front ends fall
// back to simple mode instead of retrying.
func (h *Handler) UnpublishedEntries(c *gin.Context) {
	entries, err := h.backend.UnpublishedEntries(c.Request.Context())
	if err != nil {
		h.respondError(c, "unpublished entries", err)
		return
	}

	out := make([]api.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAPIEntry(e))
	}
	c.JSON(http.StatusOK, api.EntriesResponse{Entries: out})
}

// Publish handles POST /api/workflow/publish. See UnpublishedEntries.
func (h *Handler) Publish(c *gin.Context) {
	var req api.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.backend.PublishUnpublishedEntry(c.Request.Context(), req.Path); err != nil {
		h.respondError(c, "publish entry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "published"})
}
