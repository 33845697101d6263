package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tekir/core"
	"github.com/poiesic/tekir/storage"
)

// CacheRepository implements storage.CacheRepository for BadgerDB.
// Entries never expire; the backend's lifetime bounds the scope.
type CacheRepository struct {
	backend *Backend
}

var _ storage.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a new CacheRepository.
func NewCacheRepository(backend *Backend) *CacheRepository {
	return &CacheRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend owns all resources.
func (r *CacheRepository) Close() error {
	return nil
}

// GetEntry returns the payload stored under key.
func (r *CacheRepository) GetEntry(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCacheKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err := storage.UnmarshalCacheEntry(val)
			if err != nil {
				return err
			}
			if entry.Key != key {
				return fmt.Errorf("%w: %q", storage.ErrKeyMismatch, key)
			}
			payload = entry.Payload
			return nil
		})
	}, false)
	return payload, err
}

// PutEntry writes payload under key. Last write wins.
func (r *CacheRepository) PutEntry(ctx context.Context, key string, value []byte) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		entry := core.CacheEntry{Key: key, Payload: value}
		if err := tx.Set(makeCacheKey(key), storage.MarshalCacheEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Clear drops every cache entry in this backend.
func (r *CacheRepository) Clear(ctx context.Context) error {
	return r.backend.DropPrefix(cacheEntryPrefix + ":")
}
