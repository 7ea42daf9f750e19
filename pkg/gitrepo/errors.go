package gitrepo

import "fmt"

// NotFoundError is returned when a path, ref, or repository does not exist on
// the host. Probe call sites treat it as "no prior version" rather than a
// failure.
type NotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("%q not found in repository", e.Path)
}

// AuthorizationError is returned when the token cannot read or write the
// repository. The message is user-facing and names the repository.
type AuthorizationError struct {
	Repo   string
	Reason string
}

// Error implements the error interface.
func (e AuthorizationError) Error() string {
	return fmt.Sprintf("cannot access repository %q: %s; check that the repository name is spelled correctly and the token has access to it", e.Repo, e.Reason)
}

// ConflictError is returned when a commit carries a prior content identifier
// that no longer matches the blob on the target branch. It is never retried
// automatically: a blind retry would overwrite the concurrent change.
type ConflictError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e ConflictError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("content changed upstream for %q: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("content changed upstream: %s", e.Message)
}
