package mock

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/poiesic/tekir/core"
)

// MockChatStreamer is a test double for ai.ChatStreamer.
type MockChatStreamer struct {
	// StreamFunc is called by StreamChat if set.
	// If nil, streams Chunks (or "ok" when Chunks is empty).
	StreamFunc func(ctx context.Context, messages []core.Message, model string) (io.ReadCloser, error)

	// Chunks are returned one per Read by the default stream.
	Chunks []string

	mu       sync.Mutex
	models   []string
	messages [][]core.Message
}

// NewMockChatStreamer creates a mock streamer that replies with chunks.
func NewMockChatStreamer(chunks ...string) *MockChatStreamer {
	return &MockChatStreamer{Chunks: chunks}
}

// StreamChat records the call and returns the configured stream.
func (m *MockChatStreamer) StreamChat(ctx context.Context, messages []core.Message, model string) (io.ReadCloser, error) {
	m.mu.Lock()
	m.models = append(m.models, model)
	m.messages = append(m.messages, append([]core.Message(nil), messages...))
	fn := m.StreamFunc
	chunks := m.Chunks
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages, model)
	}
	if len(chunks) == 0 {
		chunks = []string{"ok"}
	}
	return NewChunkReader(nil, chunks...), nil
}

// CallCount returns the number of times StreamChat was called.
func (m *MockChatStreamer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.models)
}

// Models returns the model id of every call in order.
func (m *MockChatStreamer) Models() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.models))
	copy(out, m.models)
	return out
}

// LastMessages returns the conversation sent by the most recent call.
func (m *MockChatStreamer) LastMessages() []core.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}

// ChunkReader yields one chunk per Read, then err (io.EOF when nil).
type ChunkReader struct {
	chunks []string
	err    error
	closed bool
}

// NewChunkReader creates a reader over chunks that ends with err.
func NewChunkReader(err error, chunks ...string) *ChunkReader {
	return &ChunkReader{chunks: chunks, err: err}
}

// Read returns the next chunk. A chunk larger than p is split across reads.
func (r *ChunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

// Close marks the reader closed.
func (r *ChunkReader) Close() error {
	r.closed = true
	return nil
}

// Closed reports whether Close was called.
func (r *ChunkReader) Closed() bool {
	return r.closed
}

// String returns the unread chunks joined.
func (r *ChunkReader) String() string {
	return strings.Join(r.chunks, "")
}
