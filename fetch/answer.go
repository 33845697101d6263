package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/poiesic/tekir/ai"
	"github.com/poiesic/tekir/cache"
	"github.com/poiesic/tekir/core"
	"github.com/poiesic/tekir/internal/transport"
	"golang.org/x/sync/singleflight"
)

// AnswerFetcher caches answers from a backend ai.Answerer per model.
type AnswerFetcher struct {
	backend ai.Answerer
	cache   *cache.Cache
	group   singleflight.Group
	logger  *slog.Logger
}

var _ ai.Answerer = (*AnswerFetcher)(nil)

// NewAnswerFetcher wraps backend with the result cache.
func NewAnswerFetcher(backend ai.Answerer, c *cache.Cache) *AnswerFetcher {
	return &AnswerFetcher{
		backend: backend,
		cache:   c,
		logger:  slog.Default().With("component", "answer-fetcher"),
	}
}

// Answer returns the cached answer for (model, query) or asks the backend.
// Failures are not cached.
func (f *AnswerFetcher) Answer(ctx context.Context, query string, model string) (string, error) {
	key := cache.Key(cache.SourceAI, model, query)

	return cachedFlight(ctx, f.cache, &f.group, f.logger, key, func() (string, error) {
		text, err := f.backend.Answer(ctx, strings.TrimSpace(query), model)
		if err != nil {
			return "", err
		}
		if err := f.cache.Put(ctx, key, text); err != nil {
			f.logger.Warn("cache write failed", "key", key, "error", err)
		}
		return text, nil
	})
}

// HTTPAnswerer asks the hosted answer service: POST {host}/{model} with
// {"message": query}, expecting {"result": text}.
type HTTPAnswerer struct {
	client *transport.Client
	host   string
}

var _ ai.Answerer = (*HTTPAnswerer)(nil)

// NewHTTPAnswerer creates an HTTPAnswerer against host.
func NewHTTPAnswerer(client *transport.Client, host string) *HTTPAnswerer {
	return &HTTPAnswerer{
		client: client,
		host:   strings.TrimSuffix(host, "/"),
	}
}

type answerRequest struct {
	Message string `json:"message"`
}

type answerResponse struct {
	Result *string `json:"result"`
}

// Answer posts query to the model's endpoint.
func (a *HTTPAnswerer) Answer(ctx context.Context, query string, model string) (string, error) {
	var resp answerResponse
	endpoint := a.host + "/" + url.PathEscape(model)
	if err := a.client.PostJSON(ctx, cache.SourceAI, endpoint, answerRequest{Message: query}, &resp); err != nil {
		return "", err
	}
	if resp.Result == nil {
		return "", core.NewFetchError(cache.SourceAI, core.ErrMalformedResponse, errors.New("missing result field"))
	}
	return strings.TrimSpace(*resp.Result), nil
}
