package backend

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/vellumcms/vellum/pkg/gitrepo"
)

// FileRequest names one file to fetch. ContentID is optional; when set the
// cache can answer without a network call.
type FileRequest struct {
	Path      string
	ContentID string
}

// FileResult is one successfully fetched file.
type FileResult struct {
	Path      string
	ContentID string
	Data      []byte
}

// FetchMany fetches many files concurrently. In-flight requests are capped by
// the backend's download bound; excess requests wait for a slot. A file whose
// fetch fails is logged and dropped from the result set, so one bad file
// never sinks the batch. Result order is unspecified.
func (b *Backend) FetchMany(ctx context.Context, requests []FileRequest) []FileResult {
	return b.fetchMany(ctx, b.client(), requests)
}

// fetchMany is FetchMany pinned to a session client, so a listing and its
// body fetches always use the same identity.
func (b *Backend) fetchMany(ctx context.Context, client gitrepo.Client, requests []FileRequest) []FileResult {
	sem := semaphore.NewWeighted(b.maxDownloads)

	var (
		mu      sync.Mutex
		results []FileResult
		wg      sync.WaitGroup
	)
	for _, req := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				b.log.Warn("skipping file, fetch slot not acquired", "path", req.Path, "error", err)
				return
			}
			defer sem.Release(1)

			data, sha, err := b.readThrough(ctx, client, req.Path, req.ContentID)
			if err != nil {
				b.log.Warn("skipping file after failed fetch", "path", req.Path, "error", err)
				return
			}

			mu.Lock()
			results = append(results, FileResult{Path: req.Path, ContentID: sha, Data: data})
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}
