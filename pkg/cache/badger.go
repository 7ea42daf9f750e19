package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Compile-time check: *Badger implements Store.
var _ Store = (*Badger)(nil)

// Badger is a persistent on-disk Store backed by BadgerDB. Suitable for a
// single instance that should keep its cache across restarts.
type Badger struct {
	db *badger.DB
}

// NewBadger opens (or creates) a Badger store at path.
func NewBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is too chatty for a cache
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache at %s: %w", path, err)
	}
	return &Badger{db: db}, nil
}

// Get returns the cached payload, or (nil, nil) on a miss.
func (b *Badger) Get(_ context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil //nolint:nilnil // caller checks nil value to detect a miss
	}
	if err != nil {
		return nil, fmt.Errorf("badger get %q: %w", key, err)
	}
	return data, nil
}

// Set stores the payload under key.
func (b *Badger) Set(_ context.Context, key string, data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("badger set %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (b *Badger) Close() error { return b.db.Close() }
