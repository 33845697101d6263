package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tekir/storage"
)

// PreferenceRepository implements storage.PreferenceRepository for BadgerDB.
type PreferenceRepository struct {
	backend *Backend
}

var _ storage.PreferenceRepository = (*PreferenceRepository)(nil)

// NewPreferenceRepository creates a new PreferenceRepository.
func NewPreferenceRepository(backend *Backend) *PreferenceRepository {
	return &PreferenceRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend owns all resources.
func (r *PreferenceRepository) Close() error {
	return nil
}

// GetPreference returns the stored value for name.
func (r *PreferenceRepository) GetPreference(ctx context.Context, name string) (string, error) {
	var value string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makePreferenceKey(name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	}, false)
	return value, err
}

// SetPreference writes value under name.
func (r *PreferenceRepository) SetPreference(ctx context.Context, name, value string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makePreferenceKey(name), []byte(value)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
