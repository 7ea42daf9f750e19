package gitea

import "fmt"

// APIError is a non-2xx response from the Gitea API after retries were
// exhausted or ruled out. Call sites translate well-known statuses into the
// gitrepo error types; everything else propagates as-is.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

// Error implements the error interface.
func (e APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gitea: %s returned %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gitea: %s returned %d", e.URL, e.StatusCode)
}

// TooManyPagesError is returned when a tree listing is still marked truncated
// after the page ceiling. It guards against hosts with a stale or buggy
// truncation flag; without it the listing loop would never terminate.
type TooManyPagesError struct {
	Ref   string
	Pages int
}

// Error implements the error interface.
func (e TooManyPagesError) Error() string {
	return fmt.Sprintf("tree listing for %q still truncated after %d pages", e.Ref, e.Pages)
}
