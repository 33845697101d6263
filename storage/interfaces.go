package storage

import (
	"context"

	"github.com/poiesic/tekir/core"
)

// Repository is the lifecycle shared by all repositories.
type Repository interface {
	// Close releases resources held by the repository.
	// It does not close the underlying backend.
	Close() error
}

// SessionRepository persists the complete chat session collection.
type SessionRepository interface {
	Repository

	// LoadSessions returns the persisted collection in stored order.
	// Returns an empty slice (not an error) when nothing has been saved yet.
	LoadSessions(ctx context.Context) ([]*core.ChatSession, error)

	// SaveSessions replaces the persisted collection with sessions.
	// The write is atomic: readers see either the old or the new collection.
	SaveSessions(ctx context.Context, sessions []*core.ChatSession) error

	// NextSessionID returns a new, strictly increasing session ID.
	NextSessionID(ctx context.Context) (core.ID, error)

	// LoadActiveID returns the persisted active session ID, or 0 if none
	// was saved.
	LoadActiveID(ctx context.Context) (core.ID, error)

	// SaveActiveID persists the active session ID. 0 clears it.
	SaveActiveID(ctx context.Context, id core.ID) error
}

// CacheRepository stores opaque cache payloads by logical key.
type CacheRepository interface {
	Repository

	// GetEntry returns the payload stored under key.
	// Returns ErrNotFound if the key was never written in this scope.
	GetEntry(ctx context.Context, key string) ([]byte, error)

	// PutEntry writes the payload under key, replacing any previous value.
	PutEntry(ctx context.Context, key string, value []byte) error

	// Clear drops every entry in the scope.
	Clear(ctx context.Context) error
}

// PreferenceRepository stores scalar user preferences.
type PreferenceRepository interface {
	Repository

	// GetPreference returns the stored value for name.
	// Returns ErrNotFound if the preference was never written.
	GetPreference(ctx context.Context, name string) (string, error)

	// SetPreference writes value under name.
	SetPreference(ctx context.Context, name, value string) error
}
