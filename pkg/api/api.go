// Package api defines the wire types of vellum's HTTP surface: the bodies
// exchanged with CMS front ends. Gitea wire shapes stay inside pkg/gitea;
// these types are vellum's own contract, mirrored by schemas/openapi.yaml.
package api

// Entry is one content file with its body materialized. Text bodies are
// returned as-is; binary bodies are base64-encoded and flagged via Encoding.
type Entry struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	ContentID string `json:"contentId"`
	Size      int64  `json:"size"`
	Data      string `json:"data"`
	Encoding  string `json:"encoding,omitempty"`
}

// EntriesResponse lists the entries under a folder, bodies included.
type EntriesResponse struct {
	Entries []Entry `json:"entries"`
}

// FileUpload is one file body in a persist request. Data carries UTF-8 text
// as-is; binary payloads such as media uploads set Encoding to "base64".
type FileUpload struct {
	Path     string `json:"path" binding:"required"`
	Data     string `json:"data"`
	Encoding string `json:"encoding,omitempty" binding:"omitempty,oneof=base64"`
}

// PersistRequest writes an entry and its attached assets as one commit.
type PersistRequest struct {
	Entry     *FileUpload  `json:"entry,omitempty"`
	Assets    []FileUpload `json:"assets,omitempty"`
	Message   string       `json:"message" binding:"required"`
	Branch    string       `json:"branch,omitempty"`
	NewBranch string       `json:"newBranch,omitempty"`
}

// DeleteRequest removes paths as one commit.
type DeleteRequest struct {
	Paths   []string `json:"paths" binding:"required,min=1"`
	Message string   `json:"message" binding:"required"`
	Branch  string   `json:"branch,omitempty"`
}

// CommitResponse reports the commit a write batch produced.
type CommitResponse struct {
	Commit string `json:"commit"`
}

// PublishRequest names a workflow draft to promote.
type PublishRequest struct {
	Path string `json:"path" binding:"required"`
}

// UserResponse describes the git-host account the configured token belongs
// to.
type UserResponse struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// AccessResponse reports whether the configured token can write to the
// content repository. Message carries remediation guidance when it cannot.
type AccessResponse struct {
	CanWrite bool   `json:"canWrite"`
	Message  string `json:"message,omitempty"`
}
