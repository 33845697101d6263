package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/tekir/ai"
	"github.com/poiesic/tekir/core"
)

// SearchSource fetches web results. Implemented by fetch.SearchFetcher.
type SearchSource interface {
	Fetch(ctx context.Context, query, engine string) ([]core.SearchResult, error)
}

// EncyclopediaSource fetches a topic summary. Implemented by
// fetch.EncyclopediaFetcher.
type EncyclopediaSource interface {
	Fetch(ctx context.Context, query string) (*core.Summary, error)
}

// AutocompleteSource fetches suggestions. Implemented by
// fetch.AutocompleteFetcher.
type AutocompleteSource interface {
	Fetch(ctx context.Context, partial, provider string) ([]core.Suggestion, error)
}

// Sources bundles the fetchers an Orchestrator dispatches to.
type Sources struct {
	Search       SearchSource
	Encyclopedia EncyclopediaSource
	Autocomplete AutocompleteSource
	// Answerer should already apply the default-model fallback.
	Answerer ai.Answerer
}

// Preferences supplies the options read at submission time.
// Implemented by prefs.Store.
type Preferences interface {
	AIEnabled(ctx context.Context) (bool, error)
	SearchEngine(ctx context.Context) (string, error)
	AutocompleteSource(ctx context.Context) (string, error)
	AIModel(ctx context.Context) (string, error)
}

// Navigator leaves the search flow for a bang target.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string) error

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, target string) error {
	return f(ctx, target)
}

// logNavigator only records the target.
type logNavigator struct {
	logger *slog.Logger
}

func (n logNavigator) Navigate(_ context.Context, target string) error {
	n.logger.Info("redirect", "target", target)
	return nil
}

// Options are the per-submission settings.
type Options struct {
	Engine    string
	Model     string
	AIEnabled bool
}

func (o *Orchestrator) readOptions(ctx context.Context) (Options, error) {
	var opts Options
	var err error
	if opts.Engine, err = o.prefs.SearchEngine(ctx); err != nil {
		return opts, err
	}
	if opts.Model, err = o.prefs.AIModel(ctx); err != nil {
		return opts, err
	}
	if opts.AIEnabled, err = o.prefs.AIEnabled(ctx); err != nil {
		return opts, err
	}
	return opts, nil
}
