package content

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/vellumcms/vellum/pkg/api"
	"github.com/vellumcms/vellum/pkg/backend"
)

// ListEntries lists the content files under a folder with their bodies
// materialized.
func (h *Handler) ListEntries(c *gin.Context) {
	depth := 1
	if d := c.Query("depth"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "depth must be a positive integer"})
			return
		}
		depth = parsed
	}

	entries, err := h.backend.EntriesByFolder(c.Request.Context(), c.Query("folder"), c.Query("ext"), depth)
	if err != nil {
		h.respondError(c, "list entries", err)
		return
	}

	out := make([]api.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAPIEntry(e))
	}
	c.JSON(http.StatusOK, api.EntriesResponse{Entries: out})
}

// Entry fetches a single entry. The contentId query parameter names the blob
// the front end expects, which lets the read come from cache.
func (h *Handler) Entry(c *gin.Context) {
	filePath := strings.TrimPrefix(c.Param("path"), "/")
	if filePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entry path is required"})
		return
	}

	entry, err := h.backend.GetEntry(c.Request.Context(), filePath, c.Query("contentId"))
	if err != nil {
		h.respondError(c, "get entry", err)
		return
	}
	c.JSON(http.StatusOK, toAPIEntry(*entry))
}

func toAPIEntry(e backend.Entry) api.Entry {
	out := api.Entry{
		Path:      e.Path,
		Name:      e.Name,
		ContentID: e.ContentID,
		Size:      e.Size,
	}
	if utf8.Valid(e.Data) {
		out.Data = string(e.Data)
	} else {
		out.Data = base64.StdEncoding.EncodeToString(e.Data)
		out.Encoding = "base64"
	}
	return out
}
