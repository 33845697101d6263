package fetch

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/poiesic/tekir/cache"
	"github.com/poiesic/tekir/core"
	"github.com/poiesic/tekir/internal/transport"
	"golang.org/x/sync/singleflight"
)

// SearchFetcher fetches web search results.
type SearchFetcher struct {
	client  *transport.Client
	cache   *cache.Cache
	baseURL string
	group   singleflight.Group
	logger  *slog.Logger
}

// NewSearchFetcher creates a SearchFetcher against baseURL.
func NewSearchFetcher(client *transport.Client, c *cache.Cache, baseURL string) *SearchFetcher {
	return &SearchFetcher{
		client:  client,
		cache:   c,
		baseURL: baseURL,
		logger:  slog.Default().With("component", "search-fetcher"),
	}
}

// Fetch returns results for query from the given engine, in backend order.
func (f *SearchFetcher) Fetch(ctx context.Context, query, engine string) ([]core.SearchResult, error) {
	key := cache.Key(cache.SourceSearch, engine, query)

	return cachedFlight(ctx, f.cache, &f.group, f.logger, key, func() ([]core.SearchResult, error) {
		params := url.Values{}
		params.Set("q", strings.TrimSpace(query))
		params.Set("source", engine)

		var fetched []core.SearchResult
		if err := f.client.GetJSON(ctx, cache.SourceSearch, f.baseURL+"?"+params.Encode(), &fetched); err != nil {
			return nil, err
		}
		if fetched == nil {
			fetched = []core.SearchResult{}
		}
		if err := f.cache.Put(ctx, key, fetched); err != nil {
			f.logger.Warn("cache write failed", "key", key, "error", err)
		}
		return fetched, nil
	})
}
