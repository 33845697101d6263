package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/poiesic/tekir/ai"
	"github.com/poiesic/tekir/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamServer streams chunks as server-sent events, except for models in
// failing, which get a 500 before any output.
type streamServer struct {
	*httptest.Server
	mu        sync.Mutex
	requested []string
}

func newStreamServer(t *testing.T, chunks []string, failing ...string) *streamServer {
	t.Helper()
	s := &streamServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.mu.Lock()
		s.requested = append(s.requested, req.Model)
		s.mu.Unlock()

		for _, m := range failing {
			if m == req.Model {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, `{"error":{"message":"model unavailable"}}`)
				return
			}
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, c := range chunks {
			payload, _ := json.Marshal(map[string]any{
				"id":      "chunk",
				"object":  "chat.completion.chunk",
				"created": 1,
				"model":   req.Model,
				"choices": []map[string]any{
					{"index": 0, "delta": map[string]any{"content": c}},
				},
			})
			fmt.Fprintf(w, "data: %s\n\n", payload)
			if flusher != nil {
				flusher.Flush()
			}
		}
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *streamServer) models() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requested...)
}

func newTestStreamer(t *testing.T, url string) ai.ChatStreamer {
	t.Helper()
	streamer, err := NewChatStreamer(ai.NewConfig(ai.WithBackend(ai.BackendOpenAI), ai.WithOpenAIHost(url)))
	require.NoError(t, err)
	return streamer
}

var greeting = []core.Message{{Role: core.RoleUser, Content: "merhaba"}}

func TestChatStreamer_StreamChat(t *testing.T) {
	server := newStreamServer(t, []string{"Mer", "haba", "!"})
	streamer := newTestStreamer(t, server.URL)

	stream, err := streamer.StreamChat(context.Background(), greeting, "gpt-4o-mini")
	require.NoError(t, err)
	defer stream.Close()

	body, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "Merhaba!", string(body))
	assert.Equal(t, []string{"gpt-4o-mini"}, server.models())
}

func TestChatStreamer_FailsBeforeOutput(t *testing.T) {
	server := newStreamServer(t, []string{"never"}, "gpt-4o-mini")
	streamer := newTestStreamer(t, server.URL)

	stream, err := streamer.StreamChat(context.Background(), greeting, "gpt-4o-mini")
	assert.Nil(t, stream)
	assert.ErrorIs(t, err, core.ErrNetwork)
}

func TestChatStreamer_FallbackRetriesDefaultModel(t *testing.T) {
	server := newStreamServer(t, []string{"İyi", "yim"}, "gpt-4o-mini")
	fallback := ai.NewFallback(nil, newTestStreamer(t, server.URL))

	stream, err := fallback.StreamChat(context.Background(), greeting, "gpt-4o-mini")
	require.NoError(t, err)
	defer stream.Close()

	body, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "İyiyim", string(body))
	assert.Equal(t, []string{"gpt-4o-mini", core.DefaultModelID}, server.models())
}

func TestChatStreamer_CanceledContext(t *testing.T) {
	server := newStreamServer(t, []string{"late"})
	streamer := newTestStreamer(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream, err := streamer.StreamChat(ctx, greeting, "gpt-4o-mini")
	assert.Nil(t, stream)
	assert.Error(t, err)
}

func TestChatStreamer_EmptyConversation(t *testing.T) {
	streamer := newTestStreamer(t, "http://127.0.0.1:0")
	_, err := streamer.StreamChat(context.Background(), nil, "gpt-4o-mini")
	assert.ErrorIs(t, err, core.ErrEmptyContent)
}
