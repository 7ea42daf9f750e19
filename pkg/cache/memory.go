package cache

import (
	"context"
	"sync"
)

const defaultMaxEntries = 512

// Compile-time check: *Memory implements Store.
var _ Store = (*Memory)(nil)

// Memory is a bounded in-process Store. When the bound is reached the oldest
// entry is evicted first. Safe for concurrent use.
type Memory struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string][]byte
	order      []string // insertion order, oldest first
}

// NewMemory creates a Memory store holding at most maxEntries values.
// Non-positive means the default bound.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Memory{
		maxEntries: maxEntries,
		entries:    make(map[string][]byte, maxEntries),
	}
}

// Get returns the cached payload, or (nil, nil) on a miss.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.entries[key]
	if !ok {
		return nil, nil //nolint:nilnil // caller checks nil value to detect a miss
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Set stores a copy of data under key, evicting the oldest entry when full.
func (m *Memory) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists {
		for len(m.entries) >= m.maxEntries && len(m.order) > 0 {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.entries, oldest)
		}
		m.order = append(m.order, key)
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	m.entries[key] = stored
	return nil
}

// Close implements Store. A Memory store holds no external resources.
func (m *Memory) Close() error { return nil }
