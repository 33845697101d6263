// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package chat

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/tekir/core"
	"github.com/poiesic/tekir/storage"
)

// errUnchanged aborts a mutation without saving.
var errUnchanged = errors.New("unchanged")

// Store is the ordered, persisted collection of chat sessions plus the
// active selection.
//
// Every mutation is applied to a copy of the current collection, saved in
// full, and only then made visible. A failed save leaves the store
// unchanged. The active selection is saved separately; on open it is
// restored if it still names a session, otherwise the most recently created
// session is active.
type Store struct {
	repo   storage.SessionRepository
	now    func() time.Time
	logger *slog.Logger

	mu       sync.Mutex
	sessions []*core.ChatSession
	active   core.ID
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the time source for CreatedAt.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithStoreLogger sets the logger.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore loads the persisted collection from repo.
func NewStore(ctx context.Context, repo storage.SessionRepository, opts ...StoreOption) (*Store, error) {
	s := &Store{
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.Default().With("component", "chat-store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	sessions, err := repo.LoadSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading chat sessions: %w", err)
	}
	for _, sess := range sessions {
		if err := core.ValidateSession(sess); err != nil {
			s.logger.Warn("loaded session fails validation", "id", sess.ID, "error", err)
		}
	}
	s.sessions = sessions
	s.active = mostRecent(sessions)

	saved, err := repo.LoadActiveID(ctx)
	if err != nil {
		s.logger.Warn("loading active session failed", "error", err)
	} else if saved != 0 && indexOf(sessions, saved) >= 0 {
		s.active = saved
	}

	s.logger.Debug("loaded chat sessions", "count", len(sessions), "active", s.active)
	return s, nil
}

// mostRecent returns the id with the greatest CreatedAt, later entries
// winning ties, or 0 for an empty collection.
func mostRecent(sessions []*core.ChatSession) core.ID {
	var best *core.ChatSession
	for _, sess := range sessions {
		if best == nil || !sess.CreatedAt.Before(best.CreatedAt) {
			best = sess
		}
	}
	if best == nil {
		return 0
	}
	return best.ID
}

// mutate applies fn to a deep copy of the collection, persists the result
// and commits it.
func (s *Store) mutate(ctx context.Context, fn func(sessions []*core.ChatSession) ([]*core.ChatSession, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutateLocked(ctx, fn)
}

func (s *Store) mutateLocked(ctx context.Context, fn func(sessions []*core.ChatSession) ([]*core.ChatSession, error)) error {
	next := make([]*core.ChatSession, len(s.sessions))
	for i, sess := range s.sessions {
		next[i] = sess.Clone()
	}
	next, err := fn(next)
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.SaveSessions(ctx, next); err != nil {
		return fmt.Errorf("saving chat sessions: %w", err)
	}
	s.sessions = next
	return nil
}

// mutateSession applies fn to the session with id.
func (s *Store) mutateSession(ctx context.Context, id core.ID, fn func(sess *core.ChatSession) error) error {
	return s.mutate(ctx, func(sessions []*core.ChatSession) ([]*core.ChatSession, error) {
		i := indexOf(sessions, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %d", ErrSessionNotFound, id)
		}
		if err := fn(sessions[i]); err != nil {
			return nil, err
		}
		return sessions, nil
	})
}

func indexOf(sessions []*core.ChatSession, id core.ID) int {
	return slices.IndexFunc(sessions, func(sess *core.ChatSession) bool {
		return sess.ID == id
	})
}

// CreateSession adds an empty, unlocked session with model and makes it
// active.
func (s *Store) CreateSession(ctx context.Context, model core.ModelOption) (core.ID, error) {
	if _, ok := core.LookupModel(model.ID); !ok {
		return 0, fmt.Errorf("%w: %q", core.ErrUnknownModel, model.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.repo.NextSessionID(ctx)
	if err != nil {
		return 0, err
	}
	err = s.mutateLocked(ctx, func(sessions []*core.ChatSession) ([]*core.ChatSession, error) {
		return append(sessions, &core.ChatSession{
			ID:        id,
			Model:     model,
			Messages:  []core.Message{},
			CreatedAt: s.now(),
		}), nil
	})
	if err != nil {
		return 0, err
	}
	s.setActiveLocked(ctx, id)
	s.logger.Debug("created session", "id", id, "model", model.ID)
	return id, nil
}

// SelectSession makes id the active session and saves the selection.
func (s *Store) SelectSession(ctx context.Context, id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.sessions, id) < 0 {
		return fmt.Errorf("%w: %d", ErrSessionNotFound, id)
	}
	if err := s.repo.SaveActiveID(ctx, id); err != nil {
		return fmt.Errorf("saving active session: %w", err)
	}
	s.active = id
	return nil
}

// setActiveLocked switches the selection after a committed create or
// delete. The collection is already saved, so a failed write of the
// selection is logged rather than returned.
func (s *Store) setActiveLocked(ctx context.Context, id core.ID) {
	s.active = id
	if err := s.repo.SaveActiveID(ctx, id); err != nil {
		s.logger.Warn("saving active session failed", "id", id, "error", err)
	}
}

// ActiveID returns the active session id, if any.
func (s *Store) ActiveID() (core.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.active != 0
}

// Active returns a copy of the active session, if any.
func (s *Store) Active() (*core.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == 0 {
		return nil, false
	}
	i := indexOf(s.sessions, s.active)
	if i < 0 {
		return nil, false
	}
	return s.sessions[i].Clone(), true
}

// Session returns a copy of the session with id.
func (s *Store) Session(id core.ID) (*core.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.sessions, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %d", ErrSessionNotFound, id)
	}
	return s.sessions[i].Clone(), nil
}

// Sessions returns copies of all sessions in stored order.
func (s *Store) Sessions() []*core.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*core.ChatSession, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

// AppendUserMessage appends a user message, as typed, and locks the session.
// Whitespace-only text is rejected.
func (s *Store) AppendUserMessage(ctx context.Context, id core.ID, text string) error {
	msg := core.Message{Role: core.RoleUser, Content: text}
	if err := core.ValidateMessage(msg); err != nil {
		return err
	}
	return s.mutateSession(ctx, id, func(sess *core.ChatSession) error {
		sess.Messages = append(sess.Messages, msg)
		sess.Locked = true
		return nil
	})
}

// AppendAssistantPlaceholder appends an empty assistant message for a reply
// to stream into.
func (s *Store) AppendAssistantPlaceholder(ctx context.Context, id core.ID) error {
	return s.mutateSession(ctx, id, func(sess *core.ChatSession) error {
		sess.Messages = append(sess.Messages, core.Message{Role: core.RoleAssistant})
		return nil
	})
}

// MutateLastMessage replaces the content of the session's last message,
// which must be an assistant message.
func (s *Store) MutateLastMessage(ctx context.Context, id core.ID, content string) error {
	return s.mutateSession(ctx, id, func(sess *core.ChatSession) error {
		n := len(sess.Messages)
		if n == 0 || sess.Messages[n-1].Role != core.RoleAssistant {
			return fmt.Errorf("%w: session %d", ErrNoPlaceholder, id)
		}
		sess.Messages[n-1].Content = content
		return nil
	})
}

// DiscardLastMessage removes the session's last message, which must be an
// assistant message. Earlier messages are untouched.
func (s *Store) DiscardLastMessage(ctx context.Context, id core.ID) error {
	return s.mutateSession(ctx, id, func(sess *core.ChatSession) error {
		n := len(sess.Messages)
		if n == 0 || sess.Messages[n-1].Role != core.RoleAssistant {
			return fmt.Errorf("%w: session %d", ErrNoPlaceholder, id)
		}
		sess.Messages = sess.Messages[:n-1]
		return nil
	})
}

// RenameSession sets a custom title. A blank title clears it.
func (s *Store) RenameSession(ctx context.Context, id core.ID, title string) error {
	return s.mutateSession(ctx, id, func(sess *core.ChatSession) error {
		sess.CustomTitle = strings.TrimSpace(title)
		return nil
	})
}

// DeleteSession removes a session. Deleting the active session selects the
// most recently created remaining session, or none.
func (s *Store) DeleteSession(ctx context.Context, id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var remaining []*core.ChatSession
	err := s.mutateLocked(ctx, func(sessions []*core.ChatSession) ([]*core.ChatSession, error) {
		i := indexOf(sessions, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %d", ErrSessionNotFound, id)
		}
		remaining = slices.Delete(sessions, i, i+1)
		return remaining, nil
	})
	if err != nil {
		return err
	}
	if s.active == id {
		s.setActiveLocked(ctx, mostRecent(remaining))
	}
	s.logger.Debug("deleted session", "id", id, "active", s.active)
	return nil
}

// SetModel changes the session's model. It reports false without error when
// the session is locked.
func (s *Store) SetModel(ctx context.Context, id core.ID, model core.ModelOption) (bool, error) {
	if _, ok := core.LookupModel(model.ID); !ok {
		return false, fmt.Errorf("%w: %q", core.ErrUnknownModel, model.ID)
	}
	changed := false
	err := s.mutateSession(ctx, id, func(sess *core.ChatSession) error {
		if sess.Locked {
			return errUnchanged
		}
		sess.Model = model
		changed = true
		return nil
	})
	return changed, err
}

// SortedByRecent returns copies of all sessions, most recently created first.
func (s *Store) SortedByRecent() []*core.ChatSession {
	out := s.Sessions()
	slices.SortStableFunc(out, func(a, b *core.ChatSession) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return out
}
