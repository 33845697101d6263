package ai

import (
	"context"
	"io"

	"github.com/poiesic/tekir/core"
)

// Answerer produces a single-shot answer to a search query.
// Implementations must be thread-safe for concurrent use.
type Answerer interface {
	// Answer returns the model's answer text for query, trimmed of
	// surrounding whitespace. model is a core.ModelOption id.
	Answer(ctx context.Context, query string, model string) (string, error)
}

// ChatStreamer opens a streamed chat reply.
// Implementations must be thread-safe for concurrent use.
type ChatStreamer interface {
	// StreamChat sends the conversation and returns a reader over the reply
	// text as it is produced. The caller must close the reader.
	// messages may end with an empty assistant placeholder; implementations
	// that cannot accept one drop it.
	StreamChat(ctx context.Context, messages []core.Message, model string) (io.ReadCloser, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Answerer returns the single-shot answer service.
	Answerer() Answerer

	// ChatStreamer returns the chat streaming service.
	ChatStreamer() ChatStreamer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
