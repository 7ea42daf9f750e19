// Command mock-gitea serves an in-memory Gitea-compatible host seeded with
// demo content, plus a small HTML dashboard for watching vellum's commits
// land during local development.
package main

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/vellumcms/vellum/pkg/giteatest"
)

const recentCommits = 20

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	srv := giteatest.New(giteatest.Options{
		Owner:  envOr("MOCK_OWNER", "acme"),
		Name:   envOr("MOCK_REPO", "site"),
		Token:  os.Getenv("MOCK_TOKEN"),
		Logger: log,
	})

	seedContent(srv)
	log.Info("seeded content repository", "repo", srv.FullName(), "files", len(srv.Files("")))

	r := srv.Router()
	registerHTMLRoutes(r, srv)

	port := envOr("PORT", "9090")
	log.Info("mock-gitea starting", "port", port, "repo", srv.FullName())
	if err := r.Run(":" + port); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func registerHTMLRoutes(r *gin.Engine, s *giteatest.Server) {
	r.GET("/", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, renderDashboard(s))
	})

	r.GET("/file/*path", func(c *gin.Context) {
		path := strings.TrimPrefix(c.Param("path"), "/")
		data, ok := s.FileData("", path)
		if !ok {
			c.String(http.StatusNotFound, "file not found")
			return
		}
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, renderFilePage(path, data))
	})
}

func short(id string) string {
	if len(id) > 10 {
		return id[:10]
	}
	return id
}

// --- HTML templates ---

func renderDashboard(s *giteatest.Server) string {
	head, _ := s.Head("")
	files := s.Files("")
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var fileRows strings.Builder
	for _, p := range paths {
		data := files[p]
		fileRows.WriteString(fmt.Sprintf(`
        <tr>
          <td style="padding:10px 16px;border-bottom:1px solid #21262d;">
            <a href="/file/%s" style="color:#58a6ff;text-decoration:none;">%s</a>
          </td>
          <td style="padding:10px 16px;border-bottom:1px solid #21262d;color:#8b949e;font-size:13px;">%d B</td>
          <td style="padding:10px 16px;border-bottom:1px solid #21262d;font-family:monospace;font-size:13px;color:#8b949e;">%s</td>
        </tr>`, p, p, len(data), short(giteatest.BlobSHA(data))))
	}
	if len(paths) == 0 {
		fileRows.WriteString(`<tr><td colspan="3" style="padding:40px 16px;text-align:center;color:#8b949e;">No files yet. Persist an entry through vellum.</td></tr>`)
	}

	commits := s.Commits()
	var commitRows strings.Builder
	for i := len(commits) - 1; i >= 0 && i > len(commits)-1-recentCommits; i-- {
		cm := commits[i]
		commitRows.WriteString(fmt.Sprintf(`
        <tr>
          <td style="padding:10px 16px;border-bottom:1px solid #21262d;font-family:monospace;font-size:13px;color:#79c0ff;">%s</td>
          <td style="padding:10px 16px;border-bottom:1px solid #21262d;">%s</td>
          <td style="padding:10px 16px;border-bottom:1px solid #21262d;font-family:monospace;font-size:13px;color:#8b949e;">%s</td>
          <td style="padding:10px 16px;border-bottom:1px solid #21262d;color:#8b949e;font-size:13px;">%d</td>
          <td style="padding:10px 16px;border-bottom:1px solid #21262d;color:#8b949e;font-size:13px;">%s</td>
        </tr>`, short(cm.ID), html.EscapeString(cm.Message), cm.Branch, cm.Files, cm.Created.Format("15:04:05")))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <title>Mock Gitea</title>
  <meta http-equiv="refresh" content="3">
  <style>
    * { margin:0; padding:0; box-sizing:border-box; }
    body { background:#0d1117; color:#c9d1d9; font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Helvetica,Arial,sans-serif; }
  </style>
</head>
<body>
  <div style="max-width:860px;margin:0 auto;padding:32px 16px;">
    <div style="display:flex;align-items:center;justify-content:space-between;margin-bottom:24px;">
      <h1 style="font-size:20px;font-weight:600;">%s</h1>
      <span style="font-size:13px;color:#8b949e;">head <code style="font-family:monospace;color:#79c0ff;">%s</code></span>
    </div>

    <h2 style="font-size:14px;font-weight:500;color:#8b949e;margin-bottom:8px;">Files (%d)</h2>
    <table style="width:100%%;border-collapse:collapse;background:#161b22;border:1px solid #30363d;border-radius:6px;overflow:hidden;margin-bottom:32px;">
      <thead>
        <tr>
          <th style="padding:10px 16px;text-align:left;font-size:12px;color:#8b949e;border-bottom:1px solid #21262d;font-weight:500;">Path</th>
          <th style="padding:10px 16px;text-align:left;font-size:12px;color:#8b949e;border-bottom:1px solid #21262d;font-weight:500;">Size</th>
          <th style="padding:10px 16px;text-align:left;font-size:12px;color:#8b949e;border-bottom:1px solid #21262d;font-weight:500;">Blob</th>
        </tr>
      </thead>
      <tbody>%s</tbody>
    </table>

    <h2 style="font-size:14px;font-weight:500;color:#8b949e;margin-bottom:8px;">Recent commits</h2>
    <table style="width:100%%;border-collapse:collapse;background:#161b22;border:1px solid #30363d;border-radius:6px;overflow:hidden;">
      <thead>
        <tr>
          <th style="padding:10px 16px;text-align:left;font-size:12px;color:#8b949e;border-bottom:1px solid #21262d;font-weight:500;">Commit</th>
          <th style="padding:10px 16px;text-align:left;font-size:12px;color:#8b949e;border-bottom:1px solid #21262d;font-weight:500;">Message</th>
          <th style="padding:10px 16px;text-align:left;font-size:12px;color:#8b949e;border-bottom:1px solid #21262d;font-weight:500;">Branch</th>
          <th style="padding:10px 16px;text-align:left;font-size:12px;color:#8b949e;border-bottom:1px solid #21262d;font-weight:500;">Files</th>
          <th style="padding:10px 16px;text-align:left;font-size:12px;color:#8b949e;border-bottom:1px solid #21262d;font-weight:500;">Time</th>
        </tr>
      </thead>
      <tbody>%s</tbody>
    </table>
  </div>
</body>
</html>`, s.FullName(), short(head), len(paths), fileRows.String(), commitRows.String())
}

func renderFilePage(path string, data []byte) string {
	body := fmt.Sprintf(`<div style="padding:16px;background:#0d1117;border:1px solid #30363d;border-radius:0 0 6px 6px;color:#8b949e;font-size:13px;">binary file, %d bytes</div>`, len(data))
	if utf8.Valid(data) {
		body = fmt.Sprintf(`<pre style="margin:0;padding:16px;background:#0d1117;border:1px solid #30363d;border-top:none;border-radius:0 0 6px 6px;font-size:13px;color:#c9d1d9;overflow-x:auto;white-space:pre-wrap;">%s</pre>`, html.EscapeString(string(data)))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <title>%s - Mock Gitea</title>
  <style>
    * { margin:0; padding:0; box-sizing:border-box; }
    body { background:#0d1117; color:#c9d1d9; font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Helvetica,Arial,sans-serif; }
    a { color:#58a6ff; text-decoration:none; }
    a:hover { text-decoration:underline; }
  </style>
</head>
<body>
  <div style="max-width:860px;margin:0 auto;padding:32px 16px;">
    <div style="margin-bottom:24px;font-size:13px;">
      <a href="/">All files</a>
    </div>
    <div style="padding:10px 16px;background:#1c2128;border:1px solid #30363d;border-radius:6px 6px 0 0;font-size:13px;">
      <code style="color:#79c0ff;">%s</code>
      <span style="margin-left:12px;color:#8b949e;">%s</span>
    </div>
    %s
  </div>
</body>
</html>`, path, path, short(giteatest.BlobSHA(data)), body)
}
