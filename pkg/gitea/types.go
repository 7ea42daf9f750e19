package gitea

// Wire schemas for the Gitea endpoints this client consumes. Each response is
// decoded into an explicit struct; shape mismatches fail at the decode step
// instead of flowing downstream as zero values.

type branchResponse struct {
	Name   string `json:"name"`
	Commit struct {
		ID string `json:"id"`
	} `json:"commit"`
}

type treeResponse struct {
	SHA        string      `json:"sha"`
	Page       int         `json:"page"`
	TotalCount int64       `json:"total_count"`
	Truncated  bool        `json:"truncated"`
	Entries    []treeEntry `json:"tree"`
}

type treeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"` // "blob", "tree" or "commit"
	Size int64  `json:"size"`
	SHA  string `json:"sha"`
}

// contentsResponse is Gitea's contents-API file shape. Encoding and Content
// are null for directory entries, hence the pointers.
type contentsResponse struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	SHA      string  `json:"sha"`
	Type     string  `json:"type"` // "file", "dir", "symlink" or "submodule"
	Size     int64   `json:"size"`
	Encoding *string `json:"encoding"`
	Content  *string `json:"content"`
}

// changeFileOperation is one file in a batch commit request.
type changeFileOperation struct {
	Operation string `json:"operation"` // "create", "update" or "delete"
	Path      string `json:"path"`
	Content   string `json:"content,omitempty"` // base64
	SHA       string `json:"sha,omitempty"`
	FromPath  string `json:"from_path,omitempty"`
}

// changeFilesOptions is the batch commit request body. All operations are
// applied by the host in a single commit.
type changeFilesOptions struct {
	Message   string                `json:"message"`
	Branch    string                `json:"branch,omitempty"`
	NewBranch string                `json:"new_branch,omitempty"`
	Files     []changeFileOperation `json:"files"`
}

type filesResponse struct {
	Files  []contentsResponse `json:"files"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

type repositoryResponse struct {
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	Permissions   struct {
		Admin bool `json:"admin"`
		Push  bool `json:"push"`
		Pull  bool `json:"pull"`
	} `json:"permissions"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}
