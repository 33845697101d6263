package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/poiesic/tekir/cache"
	"github.com/poiesic/tekir/core"
	"github.com/poiesic/tekir/internal/transport"
	"golang.org/x/sync/singleflight"
)

// wikipediaLanguage is the cache option segment for summaries.
const wikipediaLanguage = "en"

// EncyclopediaFetcher looks up a Wikipedia summary for a query in two steps:
// a title search, then a summary by exact title.
type EncyclopediaFetcher struct {
	client     *transport.Client
	cache      *cache.Cache
	apiURL     string
	summaryURL string
	group      singleflight.Group
	logger     *slog.Logger
}

// NewEncyclopediaFetcher creates an EncyclopediaFetcher.
func NewEncyclopediaFetcher(client *transport.Client, c *cache.Cache, apiURL, summaryURL string) *EncyclopediaFetcher {
	return &EncyclopediaFetcher{
		client:     client,
		cache:      c,
		apiURL:     apiURL,
		summaryURL: summaryURL,
		logger:     slog.Default().With("component", "encyclopedia-fetcher"),
	}
}

// cachedSummary lets an absent summary be cached too.
type cachedSummary struct {
	Summary *core.Summary `json:"summary"`
}

type titleSearchResponse struct {
	Query *struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type summaryResponse struct {
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Extract   string          `json:"extract"`
	Thumbnail *core.Thumbnail `json:"thumbnail"`
	Content   struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Fetch returns the summary of the best matching article, or nil when the
// query carries a bang pattern, nothing matches, or the article type is not
// standard or disambiguation.
func (f *EncyclopediaFetcher) Fetch(ctx context.Context, query string) (*core.Summary, error) {
	if core.LooksLikeBang(query) {
		return nil, nil
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, nil
	}

	key := cache.Key(cache.SourceWikipedia, wikipediaLanguage, trimmed)

	cached, err := cachedFlight(ctx, f.cache, &f.group, f.logger, key, func() (cachedSummary, error) {
		summary, err := f.lookup(ctx, trimmed)
		if err != nil {
			return cachedSummary{}, err
		}
		entry := cachedSummary{Summary: summary}
		if err := f.cache.Put(ctx, key, entry); err != nil {
			f.logger.Warn("cache write failed", "key", key, "error", err)
		}
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return cached.Summary, nil
}

func (f *EncyclopediaFetcher) lookup(ctx context.Context, query string) (*core.Summary, error) {
	title, err := f.topTitle(ctx, query)
	if err != nil || title == "" {
		return nil, err
	}

	var resp summaryResponse
	endpoint := f.summaryURL + "/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	if err := f.client.GetJSON(ctx, cache.SourceWikipedia, endpoint, &resp, transport.AllowNotFound()); err != nil {
		if errors.Is(err, transport.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	switch resp.Type {
	case core.SummaryTypeStandard, core.SummaryTypeDisambiguation:
	default:
		f.logger.Debug("ignoring summary", "title", title, "type", resp.Type)
		return nil, nil
	}
	if resp.Title == "" {
		return nil, core.NewFetchError(cache.SourceWikipedia, core.ErrMalformedResponse, errors.New("summary without title"))
	}

	return &core.Summary{
		Type:      resp.Type,
		Title:     resp.Title,
		Extract:   resp.Extract,
		Thumbnail: resp.Thumbnail,
		PageURL:   resp.Content.Desktop.Page,
	}, nil
}

// topTitle returns the best matching article title, or "" if none.
func (f *EncyclopediaFetcher) topTitle(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "1")
	params.Set("format", "json")
	params.Set("origin", "*")

	var resp titleSearchResponse
	if err := f.client.GetJSON(ctx, cache.SourceWikipedia, f.apiURL+"?"+params.Encode(), &resp); err != nil {
		return "", err
	}
	if resp.Query == nil {
		return "", core.NewFetchError(cache.SourceWikipedia, core.ErrMalformedResponse, errors.New("missing query field"))
	}
	if len(resp.Query.Search) == 0 {
		return "", nil
	}
	return resp.Query.Search[0].Title, nil
}
