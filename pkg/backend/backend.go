// Package backend exposes a git-hosted repository as a content store: the
// capability surface a headless CMS front end consumes. Reads go through the
// tree listing and a content-addressed cache; writes are batched into single
// commits under a per-instance persist lock.
package backend

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/vellumcms/vellum/pkg/cache"
	"github.com/vellumcms/vellum/pkg/gitrepo"
	"github.com/vellumcms/vellum/pkg/logging"
)

// DefaultMaxDownloads caps concurrent remote fetches per backend instance.
const DefaultMaxDownloads = 10

// Options tunes a Backend.
type Options struct {
	// PageSize is forwarded to tree listings; zero keeps the client default.
	PageSize int
	// MaxDownloads caps concurrent remote fetches and probes.
	// Defaults to DefaultMaxDownloads.
	MaxDownloads int
}

// session bundles the state that is swapped wholesale on re-authentication.
// Operations load the session once at their start, so none of them can
// observe a half-updated identity.
type session struct {
	client gitrepo.Client
}

// Backend is the content-store façade over one repository.
type Backend struct {
	session      atomic.Pointer[session]
	store        cache.Store // nil disables caching
	log          *slog.Logger
	metrics      *metrics
	pageSize     int
	maxDownloads int64
	persistLock  chan struct{} // capacity 1; holder is the active persist
}

// New creates a Backend over client. store may be nil to disable the content
// cache.
func New(client gitrepo.Client, store cache.Store, opts Options, log *slog.Logger) *Backend {
	maxDownloads := opts.MaxDownloads
	if maxDownloads <= 0 {
		maxDownloads = DefaultMaxDownloads
	}

	b := &Backend{
		store:        store,
		log:          logging.Component(log, "backend"),
		metrics:      newMetrics(),
		pageSize:     opts.PageSize,
		maxDownloads: int64(maxDownloads),
		persistLock:  make(chan struct{}, 1),
	}
	b.session.Store(&session{client: client})
	return b
}

// Reauthenticate swaps the git client wholesale, e.g. after a token change.
// In-flight operations finish on the client they started with.
func (b *Backend) Reauthenticate(client gitrepo.Client) {
	b.session.Store(&session{client: client})
}

// client returns the current session's git client.
func (b *Backend) client() gitrepo.Client {
	return b.session.Load().client
}

// HasWriteAccess reports whether the configured token can push to the
// repository. Failures carry an actionable message naming the repository.
func (b *Backend) HasWriteAccess(ctx context.Context) (bool, error) {
	info, err := b.client().Repo(ctx)
	if err != nil {
		return false, err
	}
	return info.Permissions.Push || info.Permissions.Admin, nil
}

// CurrentUser returns the git-host account the token belongs to.
func (b *Backend) CurrentUser(ctx context.Context) (*gitrepo.User, error) {
	return b.client().CurrentUser(ctx)
}

// UnpublishedEntries would list editorial-workflow drafts. Vellum does not
// implement a workflow, so front ends get a typed refusal and fall back to
// simple mode.
func (b *Backend) UnpublishedEntries(context.Context) ([]Entry, error) {
	return nil, UnsupportedError{Op: "unpublishedEntries"}
}

// PublishUnpublishedEntry would promote a workflow draft. See
// UnpublishedEntries.
func (b *Backend) PublishUnpublishedEntry(context.Context, string) error {
	return UnsupportedError{Op: "publishUnpublishedEntry"}
}

// acquirePersistLock serializes persist batches. Waiters queue until the
// holder releases; a context canceled while waiting surfaces as LockError.
func (b *Backend) acquirePersistLock(ctx context.Context) (release func(), err error) {
	select {
	case b.persistLock <- struct{}{}:
		return func() { <-b.persistLock }, nil
	case <-ctx.Done():
		return nil, LockError{Err: ctx.Err()}
	}
}

// readThrough consults the cache under contentID before fetching from the
// host. A failing cache degrades to a direct fetch; it never fails a read.
func (b *Backend) readThrough(ctx context.Context, client gitrepo.Client, path, contentID string) ([]byte, string, error) {
	if b.store != nil && contentID != "" {
		data, err := b.store.Get(ctx, contentID)
		switch {
		case err != nil:
			b.log.Warn("cache read failed", "key", contentID, "error", err)
		case data != nil:
			b.metrics.cacheHits.Add(ctx, 1)
			return data, contentID, nil
		default:
			b.metrics.cacheMisses.Add(ctx, 1)
		}
	}

	fc, err := client.ReadFile(ctx, path, gitrepo.ReadOptions{})
	if err != nil {
		return nil, "", err
	}
	b.metrics.filesFetched.Add(ctx, 1)
	if b.store != nil && fc.ContentID != "" {
		if err := b.store.Set(ctx, fc.ContentID, fc.Data); err != nil {
			b.log.Warn("cache write failed", "key", fc.ContentID, "error", err)
		}
	}
	return fc.Data, fc.ContentID, nil
}
