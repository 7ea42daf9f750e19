package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellumcms/vellum/pkg/cache"
)

// ─── Roundtrip ────────────────────────────────────────────────────────────────

func TestMemory_SetGetRoundtrip(t *testing.T) {
	m := cache.NewMemory(4)

	require.NoError(t, m.Set(context.Background(), "sha-a", []byte("alpha")))

	got, err := m.Get(context.Background(), "sha-a")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), got)
}

func TestMemory_Miss_ReturnsNilNil(t *testing.T) {
	m := cache.NewMemory(4)

	got, err := m.Get(context.Background(), "absent")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_OverwriteReplacesValue(t *testing.T) {
	m := cache.NewMemory(4)
	require.NoError(t, m.Set(context.Background(), "sha-a", []byte("old")))
	require.NoError(t, m.Set(context.Background(), "sha-a", []byte("new")))

	got, err := m.Get(context.Background(), "sha-a")

	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

// ─── Bounding ─────────────────────────────────────────────────────────────────

func TestMemory_EvictsOldestWhenFull(t *testing.T) {
	m := cache.NewMemory(2)
	require.NoError(t, m.Set(context.Background(), "sha-1", []byte("one")))
	require.NoError(t, m.Set(context.Background(), "sha-2", []byte("two")))
	require.NoError(t, m.Set(context.Background(), "sha-3", []byte("three")))

	oldest, err := m.Get(context.Background(), "sha-1")
	require.NoError(t, err)
	assert.Nil(t, oldest, "oldest entry is evicted first")

	kept, err := m.Get(context.Background(), "sha-3")
	require.NoError(t, err)
	assert.Equal(t, []byte("three"), kept)
}

// ─── Isolation ────────────────────────────────────────────────────────────────

func TestMemory_ReturnedSliceIsACopy(t *testing.T) {
	m := cache.NewMemory(4)
	require.NoError(t, m.Set(context.Background(), "sha-a", []byte("alpha")))

	first, err := m.Get(context.Background(), "sha-a")
	require.NoError(t, err)
	first[0] = 'X'

	second, err := m.Get(context.Background(), "sha-a")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), second, "mutating a returned slice must not corrupt the cache")
}
