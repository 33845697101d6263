package chat

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/tekir/core"
	"github.com/poiesic/tekir/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock returns times one minute apart.
func steppingClock() func() time.Time {
	t := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func setupStore(t *testing.T) (*Store, *badger.MemoryRepositories) {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	store, err := NewStore(context.Background(), repos.Sessions, WithClock(steppingClock()))
	require.NoError(t, err)
	return store, repos
}

func TestNewStore_EmptyHasNoActive(t *testing.T) {
	store, _ := setupStore(t)

	_, ok := store.ActiveID()
	assert.False(t, ok)
	_, ok = store.Active()
	assert.False(t, ok)
	assert.Empty(t, store.Sessions())
}

func TestCreateSession(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)
	assert.NotZero(t, id)

	active, ok := store.ActiveID()
	require.True(t, ok)
	assert.Equal(t, id, active)

	sess, err := store.Session(id)
	require.NoError(t, err)
	assert.Empty(t, sess.Messages)
	assert.False(t, sess.Locked)
	assert.Equal(t, core.UntitledChat, sess.Title())
}

func TestCreateSession_UnknownModel(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.CreateSession(context.Background(), core.ModelOption{ID: "nope"})
	assert.ErrorIs(t, err, core.ErrUnknownModel)
	assert.Empty(t, store.Sessions())
}

func TestCreateSession_DistinctIDs(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	seen := make(map[core.ID]bool)
	for range 5 {
		id, err := store.CreateSession(ctx, core.DefaultModel())
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestAppendUserMessage_LocksSession(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)

	require.NoError(t, store.AppendUserMessage(ctx, id, "  what is go?  "))

	sess, err := store.Session(id)
	require.NoError(t, err)
	assert.True(t, sess.Locked)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, "  what is go?  ", sess.Messages[0].Content)
	assert.Equal(t, "  what is go?  ", sess.Title())
}

func TestAppendUserMessage_RejectsBlank(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)

	err = store.AppendUserMessage(ctx, id, "   ")
	assert.ErrorIs(t, err, core.ErrEmptyContent)

	sess, err := store.Session(id)
	require.NoError(t, err)
	assert.Empty(t, sess.Messages)
	assert.False(t, sess.Locked)
}

func TestSetModel(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)

	other, ok := core.LookupModel("gpt-4o-mini")
	require.True(t, ok)

	changed, err := store.SetModel(ctx, id, other)
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, store.AppendUserMessage(ctx, id, "hi"))

	changed, err = store.SetModel(ctx, id, core.DefaultModel())
	require.NoError(t, err)
	assert.False(t, changed)

	sess, err := store.Session(id)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", sess.Model.ID)
}

func TestMutateAndDiscardLastMessage(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)

	err = store.MutateLastMessage(ctx, id, "x")
	assert.ErrorIs(t, err, ErrNoPlaceholder)

	require.NoError(t, store.AppendUserMessage(ctx, id, "hi"))
	err = store.DiscardLastMessage(ctx, id)
	assert.ErrorIs(t, err, ErrNoPlaceholder)

	require.NoError(t, store.AppendAssistantPlaceholder(ctx, id))
	require.NoError(t, store.MutateLastMessage(ctx, id, "hello"))

	sess, err := store.Session(id)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, core.RoleAssistant, sess.Messages[1].Role)
	assert.Equal(t, "hello", sess.Messages[1].Content)

	require.NoError(t, store.DiscardLastMessage(ctx, id))
	sess, err = store.Session(id)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, "hi", sess.Messages[0].Content)
}

func TestRenameSession(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)
	require.NoError(t, store.AppendUserMessage(ctx, id, "first question"))

	require.NoError(t, store.RenameSession(ctx, id, "My chat"))
	sess, err := store.Session(id)
	require.NoError(t, err)
	assert.Equal(t, "My chat", sess.Title())

	require.NoError(t, store.RenameSession(ctx, id, "  "))
	sess, err = store.Session(id)
	require.NoError(t, err)
	assert.Equal(t, "first question", sess.Title())
}

func TestDeleteSession_ReselectsMostRecent(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	a, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)
	b, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)
	c, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)

	require.NoError(t, store.SelectSession(ctx, c))
	require.NoError(t, store.DeleteSession(ctx, c))

	active, ok := store.ActiveID()
	require.True(t, ok)
	assert.Equal(t, b, active)

	require.NoError(t, store.SelectSession(ctx, a))
	require.NoError(t, store.DeleteSession(ctx, b))
	active, ok = store.ActiveID()
	require.True(t, ok)
	assert.Equal(t, a, active, "deleting an inactive session keeps the selection")

	require.NoError(t, store.DeleteSession(ctx, a))
	_, ok = store.ActiveID()
	assert.False(t, ok)
}

func TestDeleteSession_NotFound(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	err := store.DeleteSession(ctx, 42)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.SelectSession(ctx, 42), ErrSessionNotFound)
}

func TestStore_PersistsAcrossReload(t *testing.T) {
	store, repos := setupStore(t)
	ctx := context.Background()

	first, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)
	require.NoError(t, store.AppendUserMessage(ctx, first, "hello"))
	second, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)
	require.NoError(t, store.RenameSession(ctx, second, "Later"))

	reloaded, err := NewStore(ctx, repos.Sessions)
	require.NoError(t, err)

	sessions := reloaded.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, first, sessions[0].ID)
	assert.True(t, sessions[0].Locked)
	assert.Equal(t, "Later", sessions[1].Title())

	active, ok := reloaded.ActiveID()
	require.True(t, ok)
	assert.Equal(t, second, active)

	third, err := reloaded.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
	assert.NotEqual(t, second, third)
}

func TestStore_RestoresSelectionOnReload(t *testing.T) {
	store, repos := setupStore(t)
	ctx := context.Background()

	first, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)
	second, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)
	require.NoError(t, store.SelectSession(ctx, first))

	reloaded, err := NewStore(ctx, repos.Sessions)
	require.NoError(t, err)
	active, ok := reloaded.ActiveID()
	require.True(t, ok)
	assert.Equal(t, first, active)

	// A selection naming a vanished session falls back to the most recent.
	require.NoError(t, repos.Sessions.SaveActiveID(ctx, 999))
	reloaded, err = NewStore(ctx, repos.Sessions)
	require.NoError(t, err)
	active, ok = reloaded.ActiveID()
	require.True(t, ok)
	assert.Equal(t, second, active)
}

func TestSessions_ReturnsCopies(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)
	require.NoError(t, store.AppendUserMessage(ctx, id, "original"))

	sess, err := store.Session(id)
	require.NoError(t, err)
	sess.Messages[0].Content = "changed"

	again, err := store.Session(id)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Messages[0].Content)
}

func TestSortedByRecent(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	a, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)
	b, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)

	sorted := store.SortedByRecent()
	require.Len(t, sorted, 2)
	assert.Equal(t, b, sorted[0].ID)
	assert.Equal(t, a, sorted[1].ID)
}
