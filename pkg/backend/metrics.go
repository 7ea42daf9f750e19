package backend

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrName = "github.com/vellumcms/vellum"

// metrics are the business measurements a Backend emits. Instruments come
// from the global meter provider, so they are no-ops until telemetry is
// configured.
type metrics struct {
	entriesListed   metric.Int64Counter
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
	filesFetched    metric.Int64Counter
	batchFiles      metric.Int64Counter
	batchDurationMs metric.Float64Histogram
}

func newMetrics() *metrics {
	m := otel.Meter(instrName)

	entriesListed, _ := m.Int64Counter("vellum.entries.listed",
		metric.WithDescription("Entries returned by folder listings"))
	cacheHits, _ := m.Int64Counter("vellum.cache.hits",
		metric.WithDescription("Content reads answered by the cache"))
	cacheMisses, _ := m.Int64Counter("vellum.cache.misses",
		metric.WithDescription("Cache lookups that fell through to the git host"))
	filesFetched, _ := m.Int64Counter("vellum.files.fetched",
		metric.WithDescription("File bodies downloaded from the git host"))
	batchFiles, _ := m.Int64Counter("vellum.batch.files",
		metric.WithDescription("Files written or deleted by commit batches"))
	batchDurationMs, _ := m.Float64Histogram("vellum.batch.duration",
		metric.WithDescription("Commit batch duration in milliseconds"),
		metric.WithUnit("ms"))

	return &metrics{
		entriesListed:   entriesListed,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		filesFetched:    filesFetched,
		batchFiles:      batchFiles,
		batchDurationMs: batchDurationMs,
	}
}

// batchDone records a completed commit batch.
func (m *metrics) batchDone(ctx context.Context, action string, files int, start time.Time) {
	attrs := metric.WithAttributes(attribute.String("action", action))
	m.batchFiles.Add(ctx, int64(files), attrs)
	m.batchDurationMs.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
}
