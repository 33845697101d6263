// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tekir

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/tekir/ai"
	"github.com/poiesic/tekir/ai/openai"
	"github.com/poiesic/tekir/bang"
	"github.com/poiesic/tekir/cache"
	"github.com/poiesic/tekir/chat"
	"github.com/poiesic/tekir/config"
	"github.com/poiesic/tekir/fetch"
	"github.com/poiesic/tekir/internal/transport"
	"github.com/poiesic/tekir/prefs"
	"github.com/poiesic/tekir/search"
	"github.com/poiesic/tekir/storage/badger"
)

// Engine wires storage, fetchers, AI backends, the query orchestrator and
// the chat pipeline together.
//
// Chats and preferences live in a persistent badger database. The result
// cache lives in a separate in-memory database that is dropped on Close.
type Engine struct {
	backend      *badger.Backend
	cacheBackend *badger.Backend
	sessionRepo  *badger.SessionRepository
	cacheRepo    *badger.CacheRepository
	prefRepo     *badger.PreferenceRepository

	provider     ai.AIProvider
	fallback     *ai.Fallback
	answers      ai.Answerer
	cache        *cache.Cache
	prefs        *prefs.Store
	chats        *chat.Store
	conversation *chat.Conversation
	orchestrator *search.Orchestrator

	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig  *ai.Config
	endpoints fetch.Endpoints
	inMemory  bool
	provider  ai.AIProvider
	timeout   time.Duration
	userAgent string
	debounce  time.Duration
	poolSize  int
	navigator search.Navigator
	bangOpts  []bang.Option
	logger    *slog.Logger
}

// WithAIConfig sets the AI backend configuration.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithEndpoints sets the hosted service URLs.
func WithEndpoints(e fetch.Endpoints) EngineOption {
	return func(o *engineOptions) {
		o.endpoints = e
	}
}

// WithInMemoryStorage keeps chats and preferences in memory only.
func WithInMemoryStorage() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithProvider replaces the AI provider built from the AI config.
func WithProvider(p ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = p
	}
}

// WithHTTPTimeout bounds each outgoing request. Zero means no timeout.
func WithHTTPTimeout(d time.Duration) EngineOption {
	return func(o *engineOptions) {
		o.timeout = d
	}
}

// WithUserAgent sets the User-Agent header on outgoing requests.
func WithUserAgent(ua string) EngineOption {
	return func(o *engineOptions) {
		o.userAgent = ua
	}
}

// WithDebounce sets the autocomplete delay.
func WithDebounce(d time.Duration) EngineOption {
	return func(o *engineOptions) {
		o.debounce = d
	}
}

// WithPoolSize sets the orchestrator's worker pool size.
func WithPoolSize(n int) EngineOption {
	return func(o *engineOptions) {
		o.poolSize = n
	}
}

// WithNavigator sets where bang redirects go.
func WithNavigator(n search.Navigator) EngineOption {
	return func(o *engineOptions) {
		o.navigator = n
	}
}

// WithBangs adds resolver entries on top of the builtin table.
func WithBangs(opts ...bang.Option) EngineOption {
	return func(o *engineOptions) {
		o.bangOpts = append(o.bangOpts, opts...)
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// OptionsFromConfig translates a loaded config file into engine options.
func OptionsFromConfig(cfg *config.Config) []EngineOption {
	return []EngineOption{
		WithAIConfig(cfg.AIConfig()),
		WithEndpoints(cfg.FetchEndpoints()),
		WithHTTPTimeout(cfg.HTTP.Timeout),
		WithUserAgent(cfg.HTTP.UserAgent),
		WithDebounce(cfg.Search.Debounce),
		WithPoolSize(cfg.Search.PoolSize),
		WithBangs(cfg.ResolverOptions()...),
	}
}

// NewEngine opens the database at filePath and builds every component.
func NewEngine(ctx context.Context, filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:  ai.DefaultConfig(),
		endpoints: fetch.DefaultEndpoints(),
		debounce:  search.DefaultDebounce,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	options.endpoints.Normalize()
	if err := options.aiConfig.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{logger: options.logger.With("component", "engine")}
	ok := false
	defer func() {
		if !ok {
			e.Close()
		}
	}()

	var err error
	if e.backend, err = badger.OpenBackend(filePath, options.inMemory); err != nil {
		return nil, err
	}
	if e.cacheBackend, err = badger.NewMemoryBackend(); err != nil {
		return nil, err
	}
	if e.sessionRepo, err = badger.NewSessionRepository(e.backend); err != nil {
		return nil, err
	}
	e.prefRepo = badger.NewPreferenceRepository(e.backend)
	e.cacheRepo = badger.NewCacheRepository(e.cacheBackend)

	transportOpts := []transport.Option{
		transport.WithTimeout(options.timeout),
		transport.WithLogger(options.logger.With("component", "transport")),
	}
	if options.userAgent != "" {
		transportOpts = append(transportOpts, transport.WithUserAgent(options.userAgent))
	}
	client := transport.New(transportOpts...)

	e.provider = options.provider
	if e.provider == nil {
		if e.provider, err = newProvider(client, options.aiConfig); err != nil {
			return nil, err
		}
	}

	e.cache = cache.New(e.cacheRepo, cache.WithLogger(options.logger))
	e.prefs = prefs.New(e.prefRepo, prefs.WithLogger(options.logger))

	cachedAnswers := fetch.NewAnswerFetcher(e.provider.Answerer(), e.cache)
	e.fallback = ai.NewFallback(cachedAnswers, e.provider.ChatStreamer(),
		ai.WithFallbackModel(options.aiConfig.DefaultModel),
		ai.WithFallbackLogger(options.logger),
	)
	e.answers = e.fallback

	sources := search.Sources{
		Search:       fetch.NewSearchFetcher(client, e.cache, options.endpoints.Search),
		Encyclopedia: fetch.NewEncyclopediaFetcher(client, e.cache, options.endpoints.WikipediaAPI, options.endpoints.WikipediaSummary),
		Autocomplete: fetch.NewAutocompleteFetcher(client, e.cache, options.endpoints.Autocomplete),
		Answerer:     e.fallback,
	}
	searchOpts := []search.Option{
		search.WithResolver(bang.NewResolver(options.bangOpts...)),
		search.WithDebounce(options.debounce),
		search.WithLogger(options.logger),
	}
	if options.poolSize > 0 {
		searchOpts = append(searchOpts, search.WithPoolSize(options.poolSize))
	}
	if options.navigator != nil {
		searchOpts = append(searchOpts, search.WithNavigator(options.navigator))
	}
	if e.orchestrator, err = search.New(sources, e.prefs, searchOpts...); err != nil {
		return nil, err
	}

	if e.chats, err = chat.NewStore(ctx, e.sessionRepo, chat.WithStoreLogger(options.logger)); err != nil {
		return nil, err
	}
	e.conversation = chat.NewConversation(e.chats, e.fallback, e.prefs)

	ok = true
	return e, nil
}

func newProvider(client *transport.Client, cfg *ai.Config) (ai.AIProvider, error) {
	if cfg.Backend == ai.BackendOpenAI {
		return openai.NewProvider(cfg)
	}
	return fetch.NewHTTPProvider(client, cfg)
}

// Close stops the orchestrator, drops the result cache and closes storage.
func (e *Engine) Close() error {
	var errs []error

	if e.orchestrator != nil {
		if err := e.orchestrator.Close(); err != nil {
			e.logger.Error("error closing orchestrator", "err", err)
			errs = append(errs, err)
		}
	}
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
		}
	}
	if e.cacheBackend != nil {
		if err := e.cacheBackend.Close(); err != nil {
			e.logger.Error("error closing cache backend", "err", err)
			errs = append(errs, err)
		}
	}
	if e.sessionRepo != nil {
		if err := e.sessionRepo.Close(); err != nil {
			e.logger.Error("error closing session repository", "err", err)
			errs = append(errs, err)
		}
	}
	if e.backend != nil {
		if err := e.backend.Close(); err != nil {
			e.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Search returns the query orchestrator.
func (e *Engine) Search() *search.Orchestrator {
	return e.orchestrator
}

// Answerer returns the cached answer service with default-model fallback.
func (e *Engine) Answerer() ai.Answerer {
	return e.answers
}

// Chats returns the chat session store.
func (e *Engine) Chats() *chat.Store {
	return e.chats
}

// Conversation returns the send pipeline.
func (e *Engine) Conversation() *chat.Conversation {
	return e.conversation
}

// Preferences returns the preference store.
func (e *Engine) Preferences() *prefs.Store {
	return e.prefs
}

// ClearCache empties the result cache.
func (e *Engine) ClearCache(ctx context.Context) error {
	return e.cache.Clear(ctx)
}
