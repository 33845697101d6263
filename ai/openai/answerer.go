package openai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/tekir/ai"
	"github.com/poiesic/tekir/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Answerer implements ai.Answerer using OpenAI-compatible chat APIs.
type Answerer struct {
	client llms.Model
	config *ai.Config
	now    func() time.Time
	logger *slog.Logger
}

// newClient creates the shared langchaingo client.
// The model set here is only the default; every call names its model.
func newClient(config *ai.Config) (llms.Model, error) {
	return openai.New(
		openai.WithBaseURL(config.OpenAIHost),
		openai.WithToken(config.OpenAIToken),
		openai.WithModel(config.BackendModel(config.DefaultModel)),
	)
}

// newAnswerer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newAnswerer(config *ai.Config, client llms.Model) *Answerer {
	return &Answerer{
		client: client,
		config: config,
		now:    time.Now,
		logger: slog.Default().With("component", "openai-answerer"),
	}
}

// NewAnswerer creates a new answerer using the provided configuration.
//
// Returns ai.Answerer interface to enforce abstraction.
func NewAnswerer(config *ai.Config) (ai.Answerer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newClient(config)
	if err != nil {
		return nil, err
	}
	return newAnswerer(config, client), nil
}

// Answer asks model for a direct answer to query.
func (a *Answerer) Answer(ctx context.Context, query string, model string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildAnswerPrompt(a.now())),
		llms.TextParts(llms.ChatMessageTypeHuman, scrubQuery(query)),
	}

	response, err := a.client.GenerateContent(ctx, content,
		llms.WithModel(a.config.BackendModel(model)),
		llms.WithTemperature(0.2),
	)
	if err != nil {
		a.logger.Error("failed to generate answer", "model", model, "err", err)
		return "", core.NewFetchError("ai", core.ErrNetwork, err)
	}

	if len(response.Choices) < 1 {
		return "", core.NewFetchError("ai", core.ErrMalformedResponse, nil)
	}

	text := strings.TrimSpace(response.Choices[0].Content)
	if text == "" {
		return "", core.NewFetchError("ai", core.ErrMalformedResponse, nil)
	}
	return text, nil
}
