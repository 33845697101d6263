// Package prefs stores the user's scalar preferences.
//
// Each preference lives under its own key. Reading a preference that was
// never written stores its default first, so every key exists after its
// first read.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/poiesic/tekir/core"
	"github.com/poiesic/tekir/storage"
)

// Preference keys.
const (
	KeyAIEnabled          = "karakulakEnabled"
	KeySearchEngine       = "searchEngine"
	KeyAutocompleteSource = "autocompleteSource"
	KeyAIModel            = "aiModel"
)

// Defaults.
const (
	DefaultSearchEngine       = "brave"
	DefaultAutocompleteSource = "brave"
	DefaultAIEnabled          = false
)

// ErrInvalidValue is returned when a preference is set to an unusable value.
var ErrInvalidValue = errors.New("invalid preference value")

// Store provides typed access to preferences.
type Store struct {
	repo   storage.PreferenceRepository
	mu     sync.Mutex
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store over repo.
func New(repo storage.PreferenceRepository, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		logger: slog.Default().With("component", "prefs"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// get returns the value under key, writing def first if it is missing.
func (s *Store) get(ctx context.Context, key, def string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.repo.GetPreference(ctx, key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}
	if err := s.repo.SetPreference(ctx, key, def); err != nil {
		return "", err
	}
	s.logger.Debug("initialized preference", "key", key, "value", def)
	return def, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.SetPreference(ctx, key, value)
}

// AIEnabled reports whether AI answers are shown. Unparseable stored
// values read as false.
func (s *Store) AIEnabled(ctx context.Context) (bool, error) {
	v, err := s.get(ctx, KeyAIEnabled, strconv.FormatBool(DefaultAIEnabled))
	if err != nil {
		return false, err
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		s.logger.Warn("unparseable preference", "key", KeyAIEnabled, "value", v)
		return false, nil
	}
	return enabled, nil
}

// SetAIEnabled turns AI answers on or off.
func (s *Store) SetAIEnabled(ctx context.Context, enabled bool) error {
	return s.set(ctx, KeyAIEnabled, strconv.FormatBool(enabled))
}

// SearchEngine returns the selected web search engine.
func (s *Store) SearchEngine(ctx context.Context) (string, error) {
	return s.get(ctx, KeySearchEngine, DefaultSearchEngine)
}

// SetSearchEngine selects the web search engine.
func (s *Store) SetSearchEngine(ctx context.Context, engine string) error {
	if engine == "" {
		return fmt.Errorf("%w: empty search engine", ErrInvalidValue)
	}
	return s.set(ctx, KeySearchEngine, engine)
}

// AutocompleteSource returns the selected autocomplete provider.
func (s *Store) AutocompleteSource(ctx context.Context) (string, error) {
	return s.get(ctx, KeyAutocompleteSource, DefaultAutocompleteSource)
}

// SetAutocompleteSource selects the autocomplete provider.
func (s *Store) SetAutocompleteSource(ctx context.Context, provider string) error {
	if provider == "" {
		return fmt.Errorf("%w: empty autocomplete source", ErrInvalidValue)
	}
	return s.set(ctx, KeyAutocompleteSource, provider)
}

// AIModel returns the selected model id. A stored id that is no longer in
// the model registry reads as the default model.
func (s *Store) AIModel(ctx context.Context) (string, error) {
	v, err := s.get(ctx, KeyAIModel, core.DefaultModelID)
	if err != nil {
		return "", err
	}
	if _, ok := core.LookupModel(v); !ok {
		s.logger.Warn("unknown stored model", "model", v)
		return core.DefaultModelID, nil
	}
	return v, nil
}

// SetAIModel selects the model by id.
func (s *Store) SetAIModel(ctx context.Context, id string) error {
	if _, ok := core.LookupModel(id); !ok {
		return fmt.Errorf("%w: %q", core.ErrUnknownModel, id)
	}
	return s.set(ctx, KeyAIModel, id)
}

// Model returns the selected model option.
func (s *Store) Model(ctx context.Context) (core.ModelOption, error) {
	id, err := s.AIModel(ctx)
	if err != nil {
		return core.ModelOption{}, err
	}
	m, _ := core.LookupModel(id)
	return m, nil
}

// Snapshot is every preference at once.
type Snapshot struct {
	AIEnabled          bool   `json:"karakulakEnabled" yaml:"karakulak_enabled"`
	SearchEngine       string `json:"searchEngine" yaml:"search_engine"`
	AutocompleteSource string `json:"autocompleteSource" yaml:"autocomplete_source"`
	AIModel            string `json:"aiModel" yaml:"ai_model"`
}

// Snapshot reads every preference, initializing missing ones.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.AIEnabled, err = s.AIEnabled(ctx); err != nil {
		return snap, err
	}
	if snap.SearchEngine, err = s.SearchEngine(ctx); err != nil {
		return snap, err
	}
	if snap.AutocompleteSource, err = s.AutocompleteSource(ctx); err != nil {
		return snap, err
	}
	if snap.AIModel, err = s.AIModel(ctx); err != nil {
		return snap, err
	}
	return snap, nil
}
