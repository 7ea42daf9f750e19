package backend

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vellumcms/vellum/pkg/gitrepo"
)

// File is one logical write in a persist batch: a content entry or an
// attached media asset.
type File struct {
	Path string
	Data []byte
}

// PersistOptions controls a persist or delete batch.
type PersistOptions struct {
	// Message is the commit message.
	Message string
	// Branch overrides the client's configured target branch.
	Branch string
	// NewBranch, when set, lands the commit on a branch of that name created
	// from Branch.
	NewBranch string
}

// PersistFiles writes the batch as exactly one commit and returns its SHA.
//
// Each file is probed concurrently for its current blob SHA: a missing file
// becomes a create, an existing one an update carrying the probed SHA so the
// host rejects the whole batch if the file changed in the meantime
// (gitrepo.ConflictError). Probe failures abort before anything is written
// and are reported per file in a BatchError.
//
// Batches are serialized per backend instance: concurrent callers queue on
// the persist lock, and a context canceled while waiting returns LockError.
func (b *Backend) PersistFiles(ctx context.Context, files []File, opts PersistOptions) (string, error) {
	if len(files) == 0 {
		return "", errors.New("persist: batch is empty")
	}

	ctx, span := otel.Tracer(instrName).Start(ctx, "PersistFiles",
		trace.WithAttributes(attribute.Int("batch.files", len(files))))
	defer span.End()
	start := time.Now()

	release, err := b.acquirePersistLock(ctx)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	defer release()

	client := b.client()
	changes, err := b.classify(ctx, client, files, opts.Branch)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	sha, err := client.Commit(ctx, gitrepo.CommitBatch{
		Message:   opts.Message,
		Branch:    opts.Branch,
		NewBranch: opts.NewBranch,
		Changes:   changes,
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	b.metrics.batchDone(ctx, "persist", len(files), start)
	b.log.Info("persisted batch", "files", len(files), "commit", sha)
	return sha, nil
}

// DeleteFiles removes the given paths as exactly one commit and returns its
// SHA. Every path is probed first; a path that does not exist is a per-file
// failure, not a silent no-op. Runs under the same persist lock as
// PersistFiles.
func (b *Backend) DeleteFiles(ctx context.Context, paths []string, opts PersistOptions) (string, error) {
	if len(paths) == 0 {
		return "", errors.New("delete: batch is empty")
	}

	ctx, span := otel.Tracer(instrName).Start(ctx, "DeleteFiles",
		trace.WithAttributes(attribute.Int("batch.files", len(paths))))
	defer span.End()
	start := time.Now()

	release, err := b.acquirePersistLock(ctx)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	defer release()

	client := b.client()
	changes := make([]gitrepo.Change, len(paths))
	collect := newFailureList()

	var g errgroup.Group
	g.SetLimit(int(b.maxDownloads))
	for i, p := range paths {
		g.Go(func() error {
			sha, err := client.StatFile(ctx, p, opts.Branch)
			if err != nil {
				collect.add(FileError{Path: p, Err: err})
				return nil
			}
			changes[i] = gitrepo.Change{Path: p, Action: gitrepo.ActionDelete, PriorContentID: sha}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	if batchErr := collect.batchError(); batchErr != nil {
		span.RecordError(batchErr)
		return "", batchErr
	}

	sha, err := client.Commit(ctx, gitrepo.CommitBatch{
		Message:   opts.Message,
		Branch:    opts.Branch,
		NewBranch: opts.NewBranch,
		Changes:   changes,
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	b.metrics.batchDone(ctx, "delete", len(paths), start)
	b.log.Info("deleted batch", "files", len(paths), "commit", sha)
	return sha, nil
}

// classify probes every file's current state concurrently and assigns its
// action: absent files become creates, present ones updates pinned to the
// probed SHA. All probe failures are collected with per-file attribution.
func (b *Backend) classify(ctx context.Context, client gitrepo.Client, files []File, branch string) ([]gitrepo.Change, error) {
	changes := make([]gitrepo.Change, len(files))
	collect := newFailureList()

	var g errgroup.Group
	g.SetLimit(int(b.maxDownloads))
	for i, f := range files {
		g.Go(func() error {
			sha, err := client.StatFile(ctx, f.Path, branch)
			if err != nil {
				var notFound gitrepo.NotFoundError
				if errors.As(err, &notFound) {
					changes[i] = gitrepo.Change{Path: f.Path, Action: gitrepo.ActionCreate, Content: f.Data}
					return nil
				}
				collect.add(FileError{Path: f.Path, Err: err})
				return nil
			}
			changes[i] = gitrepo.Change{Path: f.Path, Action: gitrepo.ActionUpdate, Content: f.Data, PriorContentID: sha}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if batchErr := collect.batchError(); batchErr != nil {
		return nil, batchErr
	}
	return changes, nil
}

// failureList gathers FileErrors from concurrent probes.
type failureList struct {
	mu       sync.Mutex
	failures []FileError
}

func newFailureList() *failureList { return &failureList{} }

func (l *failureList) add(f FileError) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures = append(l.failures, f)
}

// batchError returns a BatchError with the failures in path order, or nil
// when all probes succeeded. Sorting keeps reports stable regardless of
// probe scheduling.
func (l *failureList) batchError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.failures) == 0 {
		return nil
	}
	sort.Slice(l.failures, func(i, j int) bool { return l.failures[i].Path < l.failures[j].Path })
	return BatchError{Failures: l.failures}
}
