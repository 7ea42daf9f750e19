package giteatest

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	defaultPerPage = 100
	maxPerPage     = 1000
)

// Response shapes mirroring the Gitea endpoints vellum consumes.

type treePageJSON struct {
	SHA        string          `json:"sha"`
	Page       int             `json:"page"`
	TotalCount int             `json:"total_count"`
	Truncated  bool            `json:"truncated"`
	Tree       []treeEntryJSON `json:"tree"`
}

type treeEntryJSON struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	Size int64  `json:"size,omitempty"`
	SHA  string `json:"sha"`
}

type contentsJSON struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	SHA      string  `json:"sha,omitempty"`
	Type     string  `json:"type"`
	Size     int64   `json:"size"`
	Encoding *string `json:"encoding,omitempty"`
	Content  *string `json:"content,omitempty"`
}

type changeFilesJSON struct {
	Message   string           `json:"message"`
	Branch    string           `json:"branch"`
	NewBranch string           `json:"new_branch"`
	Files     []changeFileJSON `json:"files" binding:"required"`
}

type changeFileJSON struct {
	Operation string `json:"operation" binding:"required"`
	Path      string `json:"path"      binding:"required"`
	Content   string `json:"content"`
	SHA       string `json:"sha"`
	FromPath  string `json:"from_path"`
}

type filesJSON struct {
	Files  []contentsJSON `json:"files"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

func (s *Server) routes() {
	api := s.engine.Group("/api/v1", s.track(), s.auth())
	api.GET("/user", s.getUser)

	repos := api.Group("/repos/:owner/:repo", s.repoGuard())
	repos.GET("", s.getRepo)
	repos.GET("/branches/:branch", s.getBranch)
	repos.GET("/git/trees/:sha", s.getTree)
	repos.GET("/contents/*path", s.getContents)
	repos.POST("/contents", s.postContents)
}

// family buckets a matched route for the request counters.
func family(fullPath, method string) string {
	switch {
	case strings.HasSuffix(fullPath, "/branches/:branch"):
		return "branch"
	case strings.HasSuffix(fullPath, "/git/trees/:sha"):
		return "tree"
	case strings.HasSuffix(fullPath, "/contents/*path"):
		return "contents"
	case strings.HasSuffix(fullPath, "/contents") && method == http.MethodPost:
		return "commit"
	case strings.HasSuffix(fullPath, "/user"):
		return "user"
	case strings.HasSuffix(fullPath, "/repos/:owner/:repo"):
		return "repo"
	default:
		return "other"
	}
}

func (s *Server) track() gin.HandlerFunc {
	return func(c *gin.Context) {
		fam := family(c.FullPath(), c.Request.Method)
		s.statsMu.Lock()
		s.requests[fam]++
		s.inFlight++
		if s.inFlight > s.peak {
			s.peak = s.inFlight
		}
		s.statsMu.Unlock()

		c.Next()

		s.statsMu.Lock()
		s.inFlight--
		s.statsMu.Unlock()

		if s.opts.Logger != nil {
			s.opts.Logger.Info("api request",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", c.Writer.Status(),
			)
		}
	}
}

func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.opts.Token == "" {
			return
		}
		got := c.GetHeader("Authorization")
		if got != "token "+s.opts.Token && got != "Bearer "+s.opts.Token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token is required"})
		}
	}
}

func (s *Server) repoGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("owner") != s.opts.Owner || c.Param("repo") != s.opts.Name {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"message": fmt.Sprintf("repository does not exist [name: %s/%s]", c.Param("owner"), c.Param("repo")),
			})
		}
	}
}

func (s *Server) getUser(c *gin.Context) {
	u := s.opts.User
	c.JSON(http.StatusOK, gin.H{
		"id":         u.ID,
		"login":      u.Login,
		"full_name":  u.FullName,
		"email":      u.Email,
		"avatar_url": u.AvatarURL,
	})
}

func (s *Server) getRepo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":           s.opts.Name,
		"full_name":      s.FullName(),
		"owner":          gin.H{"login": s.opts.Owner},
		"default_branch": s.opts.Branch,
		"permissions": gin.H{
			"admin": !s.opts.ReadOnly,
			"push":  !s.opts.ReadOnly,
			"pull":  true,
		},
	})
}

func (s *Server) getBranch(c *gin.Context) {
	branch := c.Param("branch")

	s.mu.RLock()
	head, ok := s.heads[branch]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("branch does not exist [name: %s]", branch)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": branch, "commit": gin.H{"id": head}})
}

func (s *Server) getTree(c *gin.Context) {
	recursive := c.Query("recursive") == "true"
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.Query("per_page"))
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	s.mu.RLock()
	rev, ok := s.resolveRef(c.Param("sha"))
	var records []treeRecord
	if ok {
		records = treeRecords(rev.files, recursive)
	}
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("object does not exist [id: %s]", c.Param("sha"))})
		return
	}

	total := len(records)
	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	entries := make([]treeEntryJSON, 0, end-start)
	for _, r := range records[start:end] {
		mode := "100644"
		if r.entryTyp == "tree" {
			mode = "040000"
		}
		entries = append(entries, treeEntryJSON{Path: r.path, Mode: mode, Type: r.entryTyp, Size: r.size, SHA: r.sha})
	}
	c.JSON(http.StatusOK, treePageJSON{
		SHA:        rev.id,
		Page:       page,
		TotalCount: total,
		Truncated:  end < total,
		Tree:       entries,
	})
}

func (s *Server) getContents(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("path"), "/")
	ref := c.Query("ref")

	s.mu.RLock()
	rev, ok := s.resolveRef(ref)
	if !ok {
		s.mu.RUnlock()
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("object does not exist [id: %s]", ref)})
		return
	}

	if f, exists := rev.files[rel]; exists {
		encoding := "base64"
		content := base64.StdEncoding.EncodeToString(f.data)
		resp := contentsJSON{
			Name:     path.Base(rel),
			Path:     rel,
			SHA:      f.sha,
			Type:     "file",
			Size:     int64(len(f.data)),
			Encoding: &encoding,
			Content:  &content,
		}
		s.mu.RUnlock()
		c.JSON(http.StatusOK, resp)
		return
	}

	rows := listDir(rev.files, rel)
	s.mu.RUnlock()

	if len(rows) == 0 && rel != "" {
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("object does not exist [id: %s, rel_path: %s]", ref, rel)})
		return
	}
	out := make([]contentsJSON, len(rows))
	for i, r := range rows {
		typ := "file"
		if r.entryTyp == "dir" {
			typ = "dir"
		}
		out[i] = contentsJSON{Name: r.name, Path: r.path, SHA: r.sha, Type: typ, Size: r.size}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) postContents(c *gin.Context) {
	var req changeFilesJSON
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	resp, fail := s.applyChangeFiles(req)
	s.mu.Unlock()

	if fail != nil {
		c.JSON(fail.status, gin.H{"message": fail.message})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// apiFailure rejects a batch before anything is applied.
type apiFailure struct {
	status  int
	message string
}

// applyChangeFiles validates the whole batch against the target branch and
// applies it as one commit: nothing is written unless every operation is
// valid. Caller holds the write lock.
func (s *Server) applyChangeFiles(req changeFilesJSON) (*filesJSON, *apiFailure) {
	branch := req.Branch
	if branch == "" {
		branch = s.opts.Branch
	}
	head, ok := s.heads[branch]
	if !ok {
		return nil, &apiFailure{http.StatusNotFound, fmt.Sprintf("branch does not exist [name: %s]", branch)}
	}
	target := branch
	if req.NewBranch != "" {
		if _, exists := s.heads[req.NewBranch]; exists {
			return nil, &apiFailure{http.StatusUnprocessableEntity, fmt.Sprintf("branch already exists [name: %s]", req.NewBranch)}
		}
		target = req.NewBranch
	}

	next := copyFiles(s.revisions[head].files)
	applied := make([]contentsJSON, 0, len(req.Files))
	for _, f := range req.Files {
		switch f.Operation {
		case "create":
			if _, exists := next[f.Path]; exists {
				return nil, &apiFailure{http.StatusUnprocessableEntity, fmt.Sprintf("repository file already exists [path: %s]", f.Path)}
			}
			data, err := base64.StdEncoding.DecodeString(f.Content)
			if err != nil {
				return nil, &apiFailure{http.StatusUnprocessableEntity, fmt.Sprintf("content is not valid base64 [path: %s]", f.Path)}
			}
			state := fileState{sha: BlobSHA(data), data: data}
			next[f.Path] = state
			applied = append(applied, contentsJSON{Name: path.Base(f.Path), Path: f.Path, SHA: state.sha, Type: "file", Size: int64(len(data))})

		case "update":
			src := f.Path
			if f.FromPath != "" {
				src = f.FromPath
			}
			cur, exists := next[src]
			if !exists {
				return nil, &apiFailure{http.StatusNotFound, fmt.Sprintf("repository file does not exist [path: %s]", src)}
			}
			if f.SHA == "" {
				return nil, &apiFailure{http.StatusUnprocessableEntity, fmt.Sprintf("sha is required for update [path: %s]", src)}
			}
			if f.SHA != cur.sha {
				return nil, &apiFailure{http.StatusConflict, fmt.Sprintf("sha does not match [given: %s, expected: %s]", f.SHA, cur.sha)}
			}
			data, err := base64.StdEncoding.DecodeString(f.Content)
			if err != nil {
				return nil, &apiFailure{http.StatusUnprocessableEntity, fmt.Sprintf("content is not valid base64 [path: %s]", f.Path)}
			}
			if f.FromPath != "" {
				delete(next, src)
			}
			state := fileState{sha: BlobSHA(data), data: data}
			next[f.Path] = state
			applied = append(applied, contentsJSON{Name: path.Base(f.Path), Path: f.Path, SHA: state.sha, Type: "file", Size: int64(len(data))})

		case "delete":
			cur, exists := next[f.Path]
			if !exists {
				return nil, &apiFailure{http.StatusNotFound, fmt.Sprintf("repository file does not exist [path: %s]", f.Path)}
			}
			if f.SHA == "" {
				return nil, &apiFailure{http.StatusUnprocessableEntity, fmt.Sprintf("sha is required for delete [path: %s]", f.Path)}
			}
			if f.SHA != cur.sha {
				return nil, &apiFailure{http.StatusConflict, fmt.Sprintf("sha does not match [given: %s, expected: %s]", f.SHA, cur.sha)}
			}
			delete(next, f.Path)
			applied = append(applied, contentsJSON{Name: path.Base(f.Path), Path: f.Path, Type: "file"})

		default:
			return nil, &apiFailure{http.StatusUnprocessableEntity, fmt.Sprintf("operation %q is not supported", f.Operation)}
		}
	}

	rev := s.commitSnapshot(target, req.Message, head, next)
	out := &filesJSON{Files: applied}
	out.Commit.SHA = rev.id
	return out, nil
}
