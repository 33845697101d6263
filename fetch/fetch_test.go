package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/tekir/ai/mock"
	"github.com/poiesic/tekir/cache"
	"github.com/poiesic/tekir/core"
	"github.com/poiesic/tekir/internal/transport"
	"github.com/poiesic/tekir/storage"
	"github.com/poiesic/tekir/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return cache.New(repos.Cache)
}

// countingServer serves handler and counts requests.
func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestSearchFetcher_CacheIdempotence(t *testing.T) {
	server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cats", r.URL.Query().Get("q"))
		json.NewEncoder(w).Encode([]core.SearchResult{
			{Title: "B", URL: "https://b.example", Source: r.URL.Query().Get("source")},
			{Title: "A", URL: "https://a.example", Source: r.URL.Query().Get("source")},
		})
	})

	f := NewSearchFetcher(transport.New(), newTestCache(t), server.URL)
	ctx := context.Background()

	first, err := f.Fetch(ctx, "cats", "brave")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "B", first[0].Title)

	second, err := f.Fetch(ctx, "cats", "brave")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	// Changing the engine forces a fresh call
	third, err := f.Fetch(ctx, "cats", "google")
	require.NoError(t, err)
	assert.Equal(t, "google", third[0].Source)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchFetcher_FailureNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	})

	f := NewSearchFetcher(transport.New(), newTestCache(t), server.URL)
	ctx := context.Background()

	_, err := f.Fetch(ctx, "cats", "brave")
	assert.ErrorIs(t, err, core.ErrHTTPStatus)

	fail.Store(false)
	results, err := f.Fetch(ctx, "cats", "brave")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchFetcher_Malformed(t *testing.T) {
	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": "nope"}`))
	})

	f := NewSearchFetcher(transport.New(), newTestCache(t), server.URL)
	_, err := f.Fetch(context.Background(), "cats", "brave")
	assert.ErrorIs(t, err, core.ErrMalformedResponse)
}

func TestSearchFetcher_ConcurrentCallsShareRequest(t *testing.T) {
	release := make(chan struct{})
	server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`[{"title":"x"}]`))
	})

	f := NewSearchFetcher(transport.New(), newTestCache(t), server.URL)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := f.Fetch(context.Background(), "dup", "brave")
			assert.NoError(t, err)
			assert.Len(t, results, 1)
		}()
	}
	// Let every caller reach the cache check before the server answers
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	// Late arrivals either joined the in-flight call or hit the cache
	assert.Equal(t, int32(1), calls.Load())
}

// lateWriteRepo stores value under key the first time a lookup of key
// misses, as if an identical fetch had completed right after the miss.
type lateWriteRepo struct {
	storage.CacheRepository
	key   string
	value []byte
	once  sync.Once
}

func (r *lateWriteRepo) GetEntry(ctx context.Context, key string) ([]byte, error) {
	data, err := r.CacheRepository.GetEntry(ctx, key)
	if errors.Is(err, storage.ErrNotFound) && key == r.key {
		r.once.Do(func() {
			_ = r.CacheRepository.PutEntry(ctx, key, r.value)
		})
	}
	return data, err
}

func TestSearchFetcher_RechecksCacheBeforeFetching(t *testing.T) {
	server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]core.SearchResult{{Title: "fresh", URL: "https://fresh.example"}})
	})

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	late, err := json.Marshal([]core.SearchResult{{Title: "late", URL: "https://late.example"}})
	require.NoError(t, err)
	repo := &lateWriteRepo{
		CacheRepository: repos.Cache,
		key:             cache.Key(cache.SourceSearch, "brave", "cats"),
		value:           late,
	}

	f := NewSearchFetcher(transport.New(), cache.New(repo), server.URL)
	results, err := f.Fetch(context.Background(), "cats", "brave")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "late", results[0].Title)
	assert.Equal(t, int32(0), calls.Load())
}

func TestAutocompleteFetcher(t *testing.T) {
	server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/brave", r.URL.Path)
		q := r.URL.Query().Get("q")
		json.NewEncoder(w).Encode([]any{q, []string{q + " one", q + " two"}})
	})

	f := NewAutocompleteFetcher(transport.New(), newTestCache(t), server.URL)
	ctx := context.Background()

	suggestions, err := f.Fetch(ctx, "te", "brave")
	require.NoError(t, err)
	assert.Equal(t, []core.Suggestion{{Query: "te one"}, {Query: "te two"}}, suggestions)

	_, err = f.Fetch(ctx, "te", "brave")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAutocompleteFetcher_ShortInput(t *testing.T) {
	server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["x", []]`))
	})

	f := NewAutocompleteFetcher(transport.New(), newTestCache(t), server.URL)

	for _, input := range []string{"", " ", "t", " ğ "} {
		suggestions, err := f.Fetch(context.Background(), input, "brave")
		require.NoError(t, err)
		assert.NotNil(t, suggestions)
		assert.Empty(t, suggestions)
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestAutocompleteFetcher_MalformedEnvelope(t *testing.T) {
	bodies := []string{
		`{"a": 1}`,
		`["only one"]`,
		`["echo", "not an array"]`,
		`["echo", null]`,
		`not json`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})

			f := NewAutocompleteFetcher(transport.New(), newTestCache(t), server.URL)
			suggestions, err := f.Fetch(context.Background(), "query", "brave")
			require.NoError(t, err)
			assert.Empty(t, suggestions)
		})
	}
}

func TestAutocompleteFetcher_NetworkFailure(t *testing.T) {
	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusInternalServerError)
	})

	f := NewAutocompleteFetcher(transport.New(), newTestCache(t), server.URL)
	_, err := f.Fetch(context.Background(), "query", "brave")
	assert.ErrorIs(t, err, core.ErrHTTPStatus)
}

func newWikipediaServer(t *testing.T, summaryType string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	return countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/w/api.php":
			assert.Equal(t, "search", r.URL.Query().Get("list"))
			if r.URL.Query().Get("srsearch") == "nothing" {
				w.Write([]byte(`{"query":{"search":[]}}`))
				return
			}
			w.Write([]byte(`{"query":{"search":[{"title":"Go (programming language)"}]}}`))
		case strings.HasPrefix(r.URL.Path, "/summary/"):
			assert.Equal(t, "/summary/Go_(programming_language)", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"type":    summaryType,
				"title":   "Go (programming language)",
				"extract": "Go is a programming language.",
				"thumbnail": map[string]any{
					"source": "https://upload.example/go.png",
					"width":  320,
					"height": 240,
				},
				"content_urls": map[string]any{
					"desktop": map[string]any{"page": "https://en.wikipedia.org/wiki/Go_(programming_language)"},
				},
			})
		default:
			http.NotFound(w, r)
		}
	})
}

func TestEncyclopediaFetcher(t *testing.T) {
	server, calls := newWikipediaServer(t, core.SummaryTypeStandard)
	f := NewEncyclopediaFetcher(transport.New(), newTestCache(t), server.URL+"/w/api.php", server.URL+"/summary")
	ctx := context.Background()

	summary, err := f.Fetch(ctx, "golang")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "Go (programming language)", summary.Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Go_(programming_language)", summary.PageURL)
	require.NotNil(t, summary.Thumbnail)
	assert.Equal(t, 320, summary.Thumbnail.Width)
	assert.Equal(t, int32(2), calls.Load())

	_, err = f.Fetch(ctx, "Golang ")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEncyclopediaFetcher_RejectedType(t *testing.T) {
	server, _ := newWikipediaServer(t, "no-extract")
	f := NewEncyclopediaFetcher(transport.New(), newTestCache(t), server.URL+"/w/api.php", server.URL+"/summary")

	summary, err := f.Fetch(context.Background(), "golang")
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestEncyclopediaFetcher_Disambiguation(t *testing.T) {
	server, _ := newWikipediaServer(t, core.SummaryTypeDisambiguation)
	f := NewEncyclopediaFetcher(transport.New(), newTestCache(t), server.URL+"/w/api.php", server.URL+"/summary")

	summary, err := f.Fetch(context.Background(), "go")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, core.SummaryTypeDisambiguation, summary.Type)
}

func TestEncyclopediaFetcher_NoMatchIsCached(t *testing.T) {
	server, calls := newWikipediaServer(t, core.SummaryTypeStandard)
	f := NewEncyclopediaFetcher(transport.New(), newTestCache(t), server.URL+"/w/api.php", server.URL+"/summary")
	ctx := context.Background()

	summary, err := f.Fetch(ctx, "nothing")
	require.NoError(t, err)
	assert.Nil(t, summary)

	summary, err = f.Fetch(ctx, "nothing")
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEncyclopediaFetcher_SuppressedByBang(t *testing.T) {
	server, calls := newWikipediaServer(t, core.SummaryTypeStandard)
	f := NewEncyclopediaFetcher(transport.New(), newTestCache(t), server.URL+"/w/api.php", server.URL+"/summary")

	summary, err := f.Fetch(context.Background(), "weather !unknown")
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, int32(0), calls.Load())
}

func TestHTTPAnswerer(t *testing.T) {
	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/gpt-4o-mini", r.URL.Path)
		var req answerRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(map[string]string{"result": "  answer to " + req.Message + "\n"})
	})

	a := NewHTTPAnswerer(transport.New(), server.URL+"/")
	text, err := a.Answer(context.Background(), "life", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "answer to life", text)
}

func TestHTTPAnswerer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{"missing result", http.StatusOK, `{"other":"x"}`, core.ErrMalformedResponse},
		{"rate limited", http.StatusTooManyRequests, `{"message":"wait"}`, core.ErrRateLimited},
		{"server error", http.StatusInternalServerError, `oops`, core.ErrHTTPStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := NewHTTPAnswerer(transport.New(), server.URL).Answer(context.Background(), "q", "deepseek-r1")
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestAnswerFetcher_CachePerModel(t *testing.T) {
	backend := mock.NewMockAnswerer()
	f := NewAnswerFetcher(backend, newTestCache(t))
	ctx := context.Background()

	text, err := f.Answer(ctx, "why", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini: why", text)

	_, err = f.Answer(ctx, "Why ", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, 1, backend.CallCount())

	_, err = f.Answer(ctx, "why", "deepseek-r1")
	require.NoError(t, err)
	assert.Equal(t, 2, backend.CallCount())
}

func TestAnswerFetcher_FailureNotCached(t *testing.T) {
	backend := mock.NewMockAnswerer().FailingModels(core.ErrNetwork, "gpt-4o-mini")
	f := NewAnswerFetcher(backend, newTestCache(t))
	ctx := context.Background()

	_, err := f.Answer(ctx, "why", "gpt-4o-mini")
	assert.Error(t, err)
	_, err = f.Answer(ctx, "why", "gpt-4o-mini")
	assert.Error(t, err)
	assert.Equal(t, 2, backend.CallCount())
}

func TestHTTPChatStreamer(t *testing.T) {
	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3-1-80b", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, core.RoleAssistant, req.Messages[1].Role)
		}

		flusher := w.(http.Flusher)
		w.Write([]byte("Hel"))
		flusher.Flush()
		w.Write([]byte("lo"))
	})

	s := NewHTTPChatStreamer(transport.New(), server.URL)
	body, err := s.StreamChat(context.Background(), []core.Message{
		{Role: core.RoleUser, Content: "hi"},
		{Role: core.RoleAssistant, Content: ""},
	}, "llama-3-1-80b")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(data))
}

func TestHTTPChatStreamer_RateLimited(t *testing.T) {
	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"Too many requests, try again in a minute."}`))
	})

	s := NewHTTPChatStreamer(transport.New(), server.URL)
	_, err := s.StreamChat(context.Background(), nil, "gpt-4o-mini")
	require.Error(t, err)
	assert.True(t, core.IsRateLimited(err))
	assert.Contains(t, err.Error(), "try again in a minute")
}

func TestEndpoints_Normalize(t *testing.T) {
	e := Endpoints{Search: "http://localhost:9000/api/"}
	e.Normalize()

	assert.Equal(t, "http://localhost:9000/api", e.Search)
	assert.Equal(t, DefaultEndpoints().Autocomplete, e.Autocomplete)
}
