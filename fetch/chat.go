package fetch

import (
	"context"
	"io"

	"github.com/poiesic/tekir/ai"
	"github.com/poiesic/tekir/core"
	"github.com/poiesic/tekir/internal/transport"
)

// chatSource names the chat endpoint in errors.
const chatSource = "chat"

// HTTPChatStreamer streams chat replies from the hosted chat endpoint:
// POST {url} with {"messages": [...], "model": id}; the body is the reply
// text as it is generated.
type HTTPChatStreamer struct {
	client *transport.Client
	url    string
}

var _ ai.ChatStreamer = (*HTTPChatStreamer)(nil)

// NewHTTPChatStreamer creates an HTTPChatStreamer against url.
func NewHTTPChatStreamer(client *transport.Client, url string) *HTTPChatStreamer {
	return &HTTPChatStreamer{
		client: client,
		url:    url,
	}
}

type chatRequest struct {
	Messages []core.Message `json:"messages"`
	Model    string         `json:"model"`
}

// StreamChat opens the reply stream. A 429 carries the server's message in
// the returned *core.FetchError.
func (s *HTTPChatStreamer) StreamChat(ctx context.Context, messages []core.Message, model string) (io.ReadCloser, error) {
	return s.client.PostStream(ctx, chatSource, s.url, chatRequest{Messages: messages, Model: model})
}

// HTTPProvider implements ai.AIProvider with the hosted endpoints.
type HTTPProvider struct {
	answerer *HTTPAnswerer
	streamer *HTTPChatStreamer
}

var _ ai.AIProvider = (*HTTPProvider)(nil)

// NewHTTPProvider creates a provider for the hosted answer and chat services.
func NewHTTPProvider(client *transport.Client, config *ai.Config) (*HTTPProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &HTTPProvider{
		answerer: NewHTTPAnswerer(client, config.AnswerHost),
		streamer: NewHTTPChatStreamer(client, config.ChatURL),
	}, nil
}

// Answerer returns the hosted answer service.
func (p *HTTPProvider) Answerer() ai.Answerer {
	return p.answerer
}

// ChatStreamer returns the hosted chat service.
func (p *HTTPProvider) ChatStreamer() ai.ChatStreamer {
	return p.streamer
}

// Close is a no-op; the transport client holds no resources.
func (p *HTTPProvider) Close() error {
	return nil
}
