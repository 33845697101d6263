package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/tekir/ai"
	"github.com/poiesic/tekir/core"
)

// ModelPreference supplies the model for new sessions.
// Implemented by prefs.Store.
type ModelPreference interface {
	Model(ctx context.Context) (core.ModelOption, error)
}

// Conversation sends user messages and streams replies into the store.
type Conversation struct {
	store     *Store
	streamer  ai.ChatStreamer
	prefs     ModelPreference
	assembler *Assembler
	logger    *slog.Logger

	mu      sync.Mutex
	sending map[core.ID]bool
}

// NewConversation creates a Conversation. streamer should already apply
// the default-model fallback.
func NewConversation(store *Store, streamer ai.ChatStreamer, prefs ModelPreference) *Conversation {
	return &Conversation{
		store:     store,
		streamer:  streamer,
		prefs:     prefs,
		assembler: NewAssembler(store),
		logger:    slog.Default().With("component", "conversation"),
		sending:   make(map[core.ID]bool),
	}
}

// EnsureSession returns the active session, creating one with the
// preferred model when none is active.
func (c *Conversation) EnsureSession(ctx context.Context) (core.ID, error) {
	if id, ok := c.store.ActiveID(); ok {
		return id, nil
	}
	model, err := c.prefs.Model(ctx)
	if err != nil {
		return 0, err
	}
	return c.store.CreateSession(ctx, model)
}

// Send appends text as a user message to session id, then streams the reply
// into a new assistant message and returns it. On failure the assistant
// message is removed and the user message stays.
func (c *Conversation) Send(ctx context.Context, id core.ID, text string) (string, error) {
	if err := c.begin(id); err != nil {
		return "", err
	}
	defer c.end(id)

	if err := c.store.AppendUserMessage(ctx, id, text); err != nil {
		return "", err
	}
	if err := c.store.AppendAssistantPlaceholder(ctx, id); err != nil {
		return "", err
	}

	sess, err := c.store.Session(id)
	if err != nil {
		return "", err
	}

	stream, err := c.streamer.StreamChat(ctx, sess.Messages, sess.Model.ID)
	if err != nil {
		c.logger.Warn("could not open reply stream", "session", id, "model", sess.Model.ID, "error", err)
		if derr := c.store.DiscardLastMessage(context.WithoutCancel(ctx), id); derr != nil {
			c.logger.Warn("could not remove placeholder", "session", id, "error", derr)
		}
		return "", err
	}
	defer stream.Close()

	return c.assembler.Assemble(ctx, id, stream)
}

// SendActive ensures a session exists and sends text to it.
func (c *Conversation) SendActive(ctx context.Context, text string) (core.ID, string, error) {
	id, err := c.EnsureSession(ctx)
	if err != nil {
		return 0, "", err
	}
	reply, err := c.Send(ctx, id, text)
	return id, reply, err
}

func (c *Conversation) begin(id core.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sending[id] {
		return fmt.Errorf("%w: session %d", ErrReplyInProgress, id)
	}
	c.sending[id] = true
	return nil
}

func (c *Conversation) end(id core.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sending, id)
}
