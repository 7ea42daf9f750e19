// Package cache provides the content-addressed blob cache used by the
// backend. Entries are keyed by content identifier (blob SHA), so a cached
// value never goes stale: a changed file has a different key.
//
// Three stores are provided: Memory for single-process use, Badger for a
// persistent on-disk cache, and Redis for sharing a cache between instances.
package cache

import "context"

// Store is a byte cache keyed by content identifier.
type Store interface {
	// Get returns the cached payload, or (nil, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores the payload under key, overwriting any previous value.
	Set(ctx context.Context, key string, data []byte) error
	// Close releases store resources.
	Close() error
}
