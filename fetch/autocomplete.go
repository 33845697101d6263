package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/tekir/cache"
	"github.com/poiesic/tekir/core"
	"github.com/poiesic/tekir/internal/transport"
	"golang.org/x/sync/singleflight"
)

// MinAutocompleteLength is the shortest trimmed input that reaches the
// network.
const MinAutocompleteLength = 2

// AutocompleteFetcher fetches query suggestions.
type AutocompleteFetcher struct {
	client  *transport.Client
	cache   *cache.Cache
	baseURL string
	group   singleflight.Group
	logger  *slog.Logger
}

// NewAutocompleteFetcher creates an AutocompleteFetcher against baseURL.
func NewAutocompleteFetcher(client *transport.Client, c *cache.Cache, baseURL string) *AutocompleteFetcher {
	return &AutocompleteFetcher{
		client:  client,
		cache:   c,
		baseURL: baseURL,
		logger:  slog.Default().With("component", "autocomplete-fetcher"),
	}
}

// Fetch returns suggestions for partial from provider, in rank order.
// Input shorter than MinAutocompleteLength returns an empty list without a
// network call. A response that is not [echo, [strings...]] is logged and
// yields an empty list.
func (f *AutocompleteFetcher) Fetch(ctx context.Context, partial, provider string) ([]core.Suggestion, error) {
	trimmed := strings.TrimSpace(partial)
	if utf8.RuneCountInString(trimmed) < MinAutocompleteLength {
		return []core.Suggestion{}, nil
	}

	key := cache.Key(cache.SourceAutocomplete, provider, trimmed)

	return cachedFlight(ctx, f.cache, &f.group, f.logger, key, func() ([]core.Suggestion, error) {
		endpoint := f.baseURL + "/" + url.PathEscape(provider) + "?q=" + url.QueryEscape(trimmed)

		var envelope json.RawMessage
		if err := f.client.GetJSON(ctx, cache.SourceAutocomplete, endpoint, &envelope); err != nil {
			if errors.Is(err, core.ErrMalformedResponse) {
				f.logger.Warn("malformed autocomplete response", "provider", provider, "error", err)
				return []core.Suggestion{}, nil
			}
			return nil, err
		}

		fetched, err := parseSuggestions(envelope)
		if err != nil {
			f.logger.Warn("malformed autocomplete envelope", "provider", provider, "error", err)
			return []core.Suggestion{}, nil
		}
		if err := f.cache.Put(ctx, key, fetched); err != nil {
			f.logger.Warn("cache write failed", "key", key, "error", err)
		}
		return fetched, nil
	})
}

// parseSuggestions validates the [echo, [strings...]] envelope.
func parseSuggestions(data json.RawMessage) ([]core.Suggestion, error) {
	var envelope []json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if len(envelope) != 2 {
		return nil, errors.New("envelope must have exactly two elements")
	}
	var texts []string
	if err := json.Unmarshal(envelope[1], &texts); err != nil {
		return nil, err
	}
	if texts == nil {
		return nil, errors.New("second element must be an array")
	}

	suggestions := make([]core.Suggestion, len(texts))
	for i, text := range texts {
		suggestions[i] = core.Suggestion{Query: text}
	}
	return suggestions, nil
}
