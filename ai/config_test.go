package ai

import (
	"testing"
	"time"

	"github.com/poiesic/tekir/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, BackendHTTP, cfg.Backend)
	assert.Equal(t, "https://searchai.tekir.co", cfg.AnswerHost)
	assert.Equal(t, "https://tekir.co/api/chat", cfg.ChatURL)
	assert.Equal(t, core.DefaultModelID, cfg.DefaultModel)
	assert.Zero(t, cfg.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, BackendHTTP, cfg.Backend)
		assert.Equal(t, core.DefaultModelID, cfg.DefaultModel)
	})

	t.Run("with openai backend", func(t *testing.T) {
		cfg := NewConfig(
			WithBackend(BackendOpenAI),
			WithOpenAIHost("http://custom:8080"),
			WithOpenAIToken("secret"),
		)

		assert.Equal(t, BackendOpenAI, cfg.Backend)
		assert.Equal(t, "http://custom:8080", cfg.OpenAIHost)
		assert.Equal(t, "secret", cfg.OpenAIToken)
	})

	t.Run("with hosted endpoints", func(t *testing.T) {
		cfg := NewConfig(
			WithAnswerHost("http://answers:9000"),
			WithChatURL("http://chat:9001/api/chat"),
			WithTimeout(5*time.Second),
		)

		assert.Equal(t, "http://answers:9000", cfg.AnswerHost)
		assert.Equal(t, "http://chat:9001/api/chat", cfg.ChatURL)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("with model mapping", func(t *testing.T) {
		cfg := NewConfig(
			WithModelMapping("llama-3-1-80b", "llama3.1:8b"),
			WithModelMapping("gpt-4o-mini", "qwen2.5:3b"),
		)

		assert.Equal(t, "llama3.1:8b", cfg.BackendModel("llama-3-1-80b"))
		assert.Equal(t, "qwen2.5:3b", cfg.BackendModel("gpt-4o-mini"))
		assert.Equal(t, "deepseek-r1", cfg.BackendModel("deepseek-r1"))
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name           string
		openAIHost     string
		answerHost     string
		expectedOpenAI string
		expectedAnswer string
	}{
		{
			name:           "already canonical",
			openAIHost:     "http://localhost:11434/v1",
			answerHost:     "https://searchai.tekir.co",
			expectedOpenAI: "http://localhost:11434/v1",
			expectedAnswer: "https://searchai.tekir.co",
		},
		{
			name:           "missing /v1",
			openAIHost:     "http://localhost:11434",
			answerHost:     "https://searchai.tekir.co/",
			expectedOpenAI: "http://localhost:11434/v1",
			expectedAnswer: "https://searchai.tekir.co",
		},
		{
			name:           "has trailing slash",
			openAIHost:     "http://localhost:11434/",
			answerHost:     "",
			expectedOpenAI: "http://localhost:11434/v1",
			expectedAnswer: "",
		},
		{
			name:           "empty hosts",
			expectedOpenAI: "",
			expectedAnswer: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				OpenAIHost: tt.openAIHost,
				AnswerHost: tt.answerHost,
			}

			cfg.Normalize()

			assert.Equal(t, tt.expectedOpenAI, cfg.OpenAIHost)
			assert.Equal(t, tt.expectedAnswer, cfg.AnswerHost)
			assert.Equal(t, core.DefaultModelID, cfg.DefaultModel)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid openai config", func(t *testing.T) {
		cfg := &Config{
			Backend:    "OpenAI",
			OpenAIHost: "http://localhost:11434",
		}

		require.NoError(t, cfg.Validate())
		assert.Equal(t, BackendOpenAI, cfg.Backend)
		assert.Equal(t, "http://localhost:11434/v1", cfg.OpenAIHost)
	})

	t.Run("missing answer host", func(t *testing.T) {
		cfg := &Config{
			Backend: BackendHTTP,
			ChatURL: "https://tekir.co/api/chat",
		}

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "AnswerHost")
	})

	t.Run("missing chat url", func(t *testing.T) {
		cfg := &Config{
			Backend:    BackendHTTP,
			AnswerHost: "https://searchai.tekir.co",
		}

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ChatURL")
	})

	t.Run("missing openai host", func(t *testing.T) {
		cfg := &Config{Backend: BackendOpenAI}

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "OpenAIHost")
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := &Config{Backend: "carrier-pigeon"}

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Backend")
	})

	t.Run("unknown default model", func(t *testing.T) {
		cfg := NewConfig(WithDefaultModel("gpt-9"))

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "DefaultModel")
	})

	t.Run("negative timeout", func(t *testing.T) {
		cfg := NewConfig(WithTimeout(-time.Second))

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Timeout")
	})
}
