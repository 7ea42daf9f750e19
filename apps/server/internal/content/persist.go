package content

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vellumcms/vellum/pkg/api"
	"github.com/vellumcms/vellum/pkg/backend"
)

// Persist writes an entry and its attached assets to the repository as a
// single commit.
func (h *Handler) Persist(c *gin.Context) {
	var req api.PersistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uploads := make([]api.FileUpload, 0, 1+len(req.Assets))
	if req.Entry != nil {
		uploads = append(uploads, *req.Entry)
	}
	uploads = append(uploads, req.Assets...)
	if len(uploads) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request carries no entry and no assets"})
		return
	}

	files := make([]backend.File, 0, len(uploads))
	for _, u := range uploads {
		data, err := decodeUpload(u)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		files = append(files, backend.File{Path: u.Path, Data: data})
	}

	commit, err := h.backend.PersistFiles(c.Request.Context(), files, backend.PersistOptions{
		Message:   req.Message,
		Branch:    req.Branch,
		NewBranch: req.NewBranch,
	})
	if err != nil {
		h.respondError(c, "persist entries", err)
		return
	}

	h.log.Info("entries persisted", "files", len(files), "commit", commit)
	c.JSON(http.StatusCreated, api.CommitResponse{Commit: commit})
}

// Delete removes the named paths from the repository as a single commit.
func (h *Handler) Delete(c *gin.Context) {
	var req api.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	commit, err := h.backend.DeleteFiles(c.Request.Context(), req.Paths, backend.PersistOptions{
		Message: req.Message,
		Branch:  req.Branch,
	})
	if err != nil {
		h.respondError(c, "delete entries", err)
		return
	}

	h.log.Info("entries deleted", "files", len(req.Paths), "commit", commit)
	c.JSON(http.StatusOK, api.CommitResponse{Commit: commit})
}

func decodeUpload(u api.FileUpload) ([]byte, error) {
	if u.Encoding == "base64" {
		data, err := base64.StdEncoding.DecodeString(u.Data)
		if err != nil {
			return nil, fmt.Errorf("file %q: decode base64 body: %w", u.Path, err)
		}
		return data, nil
	}
	return []byte(u.Data), nil
}
