package ai

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/tekir/core"
)

// WithFallback runs call with the selected model. If it fails and selected is
// not defaultModel, call runs exactly once more with defaultModel and that
// outcome is returned as is. There are never more than two attempts.
func WithFallback[T any](ctx context.Context, logger *slog.Logger, selected, defaultModel string, call func(ctx context.Context, model string) (T, error)) (T, error) {
	result, err := call(ctx, selected)
	if err == nil || selected == defaultModel {
		return result, err
	}
	if ctx.Err() != nil {
		return result, err
	}

	logger.Warn("model failed, retrying with default",
		"model", selected,
		"default", defaultModel,
		"error", err)
	return call(ctx, defaultModel)
}

// Fallback wraps an Answerer and a ChatStreamer with the default-model retry
// policy.
type Fallback struct {
	answerer     Answerer
	streamer     ChatStreamer
	defaultModel string
	logger       *slog.Logger
}

var (
	_ Answerer     = (*Fallback)(nil)
	_ ChatStreamer = (*Fallback)(nil)
)

// FallbackOption configures a Fallback.
type FallbackOption func(*Fallback)

// WithFallbackModel overrides the default model id.
func WithFallbackModel(id string) FallbackOption {
	return func(f *Fallback) {
		f.defaultModel = id
	}
}

// WithFallbackLogger sets the logger.
func WithFallbackLogger(logger *slog.Logger) FallbackOption {
	return func(f *Fallback) {
		f.logger = logger
	}
}

// NewFallback creates a Fallback. Either service may be nil if the caller
// never uses it.
func NewFallback(answerer Answerer, streamer ChatStreamer, opts ...FallbackOption) *Fallback {
	f := &Fallback{
		answerer:     answerer,
		streamer:     streamer,
		defaultModel: core.DefaultModelID,
		logger:       slog.Default().With("component", "ai-fallback"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DefaultModel returns the fallback model id.
func (f *Fallback) DefaultModel() string {
	return f.defaultModel
}

// Answer asks the selected model, falling back to the default model once.
func (f *Fallback) Answer(ctx context.Context, query string, model string) (string, error) {
	return WithFallback(ctx, f.logger, model, f.defaultModel, func(ctx context.Context, m string) (string, error) {
		return f.answerer.Answer(ctx, query, m)
	})
}

// StreamChat opens a chat stream with the selected model, falling back to
// the default model once if the stream cannot be opened. Failures after the
// stream is open are not retried.
func (f *Fallback) StreamChat(ctx context.Context, messages []core.Message, model string) (io.ReadCloser, error) {
	return WithFallback(ctx, f.logger, model, f.defaultModel, func(ctx context.Context, m string) (io.ReadCloser, error) {
		return f.streamer.StreamChat(ctx, messages, m)
	})
}
