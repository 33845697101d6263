package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/tekir/ai"
	"github.com/poiesic/tekir/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompletionServer(t *testing.T, reply string, seenModel *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if seenModel != nil {
			*seenModel = req.Model
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   req.Model,
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": reply},
					"finish_reason": "stop",
				},
			},
		})
	}))
}

func TestAnswerer_Answer(t *testing.T) {
	var seen string
	server := newCompletionServer(t, "  Rayleigh scattering.  ", &seen)
	defer server.Close()

	cfg := ai.NewConfig(
		ai.WithBackend(ai.BackendOpenAI),
		ai.WithOpenAIHost(server.URL),
		ai.WithModelMapping(core.DefaultModelID, "llama3.1:8b"),
	)
	answerer, err := NewAnswerer(cfg)
	require.NoError(t, err)

	text, err := answerer.Answer(context.Background(), "why is the   sky blue", core.DefaultModelID)
	require.NoError(t, err)
	assert.Equal(t, "Rayleigh scattering.", text)
	assert.Equal(t, "llama3.1:8b", seen)
}

func TestAnswerer_EmptyReplyIsMalformed(t *testing.T) {
	server := newCompletionServer(t, "   ", nil)
	defer server.Close()

	cfg := ai.NewConfig(ai.WithBackend(ai.BackendOpenAI), ai.WithOpenAIHost(server.URL))
	answerer, err := NewAnswerer(cfg)
	require.NoError(t, err)

	_, err = answerer.Answer(context.Background(), "q", "gpt-4o-mini")
	assert.ErrorIs(t, err, core.ErrMalformedResponse)
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(&ai.Config{Backend: ai.BackendOpenAI})
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider(ai.NewConfig(ai.WithBackend(ai.BackendOpenAI)))
	require.NoError(t, err)
	defer provider.Close()

	assert.NotNil(t, provider.Answerer())
	assert.NotNil(t, provider.ChatStreamer())
}
