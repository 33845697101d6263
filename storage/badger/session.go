package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tekir/core"
	"github.com/poiesic/tekir/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
// The whole collection lives under a single key.
type SessionRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend) (*SessionRepository, error) {
	idSeq, err := backend.GetSequence(sessionIDSeq)
	if err != nil {
		return nil, err
	}

	return &SessionRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SessionRepository) Close() error {
	return r.idSeq.Release()
}

// LoadSessions returns the persisted collection in stored order.
func (r *SessionRepository) LoadSessions(ctx context.Context) ([]*core.ChatSession, error) {
	var sessions []*core.ChatSession
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(sessionsKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			sessions, unmarshalErr = storage.UnmarshalSessions(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []*core.ChatSession{}
	}
	return sessions, nil
}

// SaveSessions replaces the persisted collection.
func (r *SessionRepository) SaveSessions(ctx context.Context, sessions []*core.ChatSession) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(sessionsKey), storage.MarshalSessions(sessions)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// NextSessionID returns a new session ID from the persisted sequence.
func (r *SessionRepository) NextSessionID(ctx context.Context) (core.ID, error) {
	next, err := r.idSeq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if next == 0 {
		next, err = r.idSeq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}

// LoadActiveID returns the persisted active session ID, or 0.
func (r *SessionRepository) LoadActiveID(ctx context.Context) (core.ID, error) {
	var id core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(activeSessionKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			id, unmarshalErr = storage.UnmarshalID(val)
			return unmarshalErr
		})
	}, false)
	return id, err
}

// SaveActiveID persists the active session ID.
func (r *SessionRepository) SaveActiveID(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if id == 0 {
			if err := tx.Delete([]byte(activeSessionKey)); err != nil {
				return err
			}
		} else if err := tx.Set([]byte(activeSessionKey), storage.MarshalID(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
