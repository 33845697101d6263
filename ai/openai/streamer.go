package openai

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/poiesic/tekir/ai"
	"github.com/poiesic/tekir/core"
	"github.com/tmc/langchaingo/llms"
)

// ChatStreamer implements ai.ChatStreamer using OpenAI-compatible chat APIs.
// Generation runs on its own goroutine and feeds a pipe; closing the
// returned reader aborts it.
type ChatStreamer struct {
	client llms.Model
	config *ai.Config
	logger *slog.Logger
}

func newChatStreamer(config *ai.Config, client llms.Model) *ChatStreamer {
	return &ChatStreamer{
		client: client,
		config: config,
		logger: slog.Default().With("component", "openai-streamer"),
	}
}

// NewChatStreamer creates a new chat streamer using the provided configuration.
//
// Returns ai.ChatStreamer interface to enforce abstraction.
func NewChatStreamer(config *ai.Config) (ai.ChatStreamer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newClient(config)
	if err != nil {
		return nil, err
	}
	return newChatStreamer(config, client), nil
}

// StreamChat starts generating a reply and returns a reader over it.
//
// It blocks until the backend delivers the first chunk or fails, so a model
// that cannot answer at all fails here rather than on the first Read.
func (s *ChatStreamer) StreamChat(ctx context.Context, messages []core.Message, model string) (io.ReadCloser, error) {
	content := toMessageContent(buildChatPrompt(), messages)
	if len(content) < 2 {
		return nil, core.ErrEmptyContent
	}

	genCtx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()

	// started receives nil once output begins, or the error that ended
	// generation before any output.
	started := make(chan error, 1)
	var once sync.Once
	signal := func(err error) {
		once.Do(func() { started <- err })
	}

	go func() {
		defer cancel()
		_, err := s.client.GenerateContent(genCtx, content,
			llms.WithModel(s.config.BackendModel(model)),
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				signal(nil)
				_, werr := pw.Write(chunk)
				return werr
			}),
		)
		if err != nil {
			s.logger.Warn("chat generation failed", "model", model, "err", err)
			signal(core.NewFetchError("chat", core.ErrNetwork, err))
			pw.CloseWithError(core.NewFetchError("chat", core.ErrStreamInterrupted, err))
			return
		}
		signal(nil)
		pw.Close()
	}()

	select {
	case err := <-started:
		if err != nil {
			pr.Close()
			return nil, err
		}
	case <-ctx.Done():
		cancel()
		pr.Close()
		return nil, ctx.Err()
	}

	return &streamReader{PipeReader: pr, cancel: cancel}, nil
}

// streamReader cancels generation when the consumer closes it.
type streamReader struct {
	*io.PipeReader
	cancel context.CancelFunc
}

func (r *streamReader) Close() error {
	r.cancel()
	return r.PipeReader.Close()
}
