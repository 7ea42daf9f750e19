package backend

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vellumcms/vellum/pkg/gitrepo"
)

// Entry is one content file materialized for the front end.
type Entry struct {
	Path      string
	Name      string
	ContentID string
	Size      int64
	Data      []byte
}

// EntriesByFolder lists the content files under folder and materializes their
// bodies. ext filters by file extension ("md" or ".md"; empty keeps all).
// depth limits how many levels below folder are included; 1 means direct
// children only.
//
// Bodies are fetched through the bounded downloader: files whose fetch fails
// are logged and omitted rather than failing the listing. The result is in
// listing order.
func (b *Backend) EntriesByFolder(ctx context.Context, folder, ext string, depth int) ([]Entry, error) {
	if depth < 1 {
		depth = 1
	}
	folder = strings.Trim(folder, "/")

	ctx, span := otel.Tracer(instrName).Start(ctx, "EntriesByFolder",
		trace.WithAttributes(attribute.String("folder", folder)))
	defer span.End()

	client := b.client()
	listed, err := client.ListFiles(ctx, gitrepo.ListOptions{
		Prefix:    folder,
		Recursive: depth > 1,
		PageSize:  b.pageSize,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list folder %q: %w", folder, err)
	}

	files := filterEntries(listed, folder, ext, depth)
	requests := make([]FileRequest, len(files))
	for i, f := range files {
		requests[i] = FileRequest{Path: f.Path, ContentID: f.ContentID}
	}
	fetched := b.fetchMany(ctx, client, requests)

	byPath := make(map[string]FileResult, len(fetched))
	for _, r := range fetched {
		byPath[r.Path] = r
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		r, ok := byPath[f.Path]
		if !ok {
			continue // fetch failed; already logged by the downloader
		}
		entries = append(entries, Entry{
			Path:      f.Path,
			Name:      f.Name,
			ContentID: r.ContentID,
			Size:      f.Size,
			Data:      r.Data,
		})
	}
	b.metrics.entriesListed.Add(ctx, int64(len(entries)))
	return entries, nil
}

// GetEntry reads one content file. contentID, when known from a previous
// listing, lets the cache answer without a network round trip.
func (b *Backend) GetEntry(ctx context.Context, filePath, contentID string) (*Entry, error) {
	client := b.client()
	data, sha, err := b.readThrough(ctx, client, filePath, contentID)
	if err != nil {
		return nil, err
	}
	return &Entry{
		Path:      filePath,
		Name:      path.Base(filePath),
		ContentID: sha,
		Size:      int64(len(data)),
		Data:      data,
	}, nil
}

// filterEntries applies the extension and depth filters to a tree listing.
// Depth is relative to folder and compared segment-wise.
func filterEntries(listed []gitrepo.TreeEntry, folder, ext string, depth int) []gitrepo.TreeEntry {
	suffix := ""
	if ext != "" {
		suffix = "." + strings.TrimPrefix(ext, ".")
	}
	base := gitrepo.PathDepth(folder)

	kept := listed[:0:0]
	for _, e := range listed {
		if suffix != "" && !strings.HasSuffix(e.Name, suffix) {
			continue
		}
		if gitrepo.PathDepth(e.Path)-base > depth {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
