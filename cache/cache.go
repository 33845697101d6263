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

// Package cache memoizes source responses by (source, option, query).
//
// Entries have no expiry and no eviction; the lifetime of the backing
// repository defines the scope. Engine opens a fresh in-memory repository
// per instance, so a cache lives exactly as long as its engine.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/tekir/storage"
)

// Source names used as the first cache key segment.
const (
	SourceSearch       = "search"
	SourceAutocomplete = "autocomplete"
	SourceWikipedia    = "wikipedia"
	SourceAI           = "ai"
)

// Cache stores JSON-encodable values by logical key.
type Cache struct {
	repo   storage.CacheRepository
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a cache over repo.
func New(repo storage.CacheRepository, opts ...Option) *Cache {
	c := &Cache{
		repo:   repo,
		logger: slog.Default().With("component", "cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds a logical cache key. The query is trimmed and lower-cased, so
// "Cats " and "cats" share an entry.
func Key(source, option, query string) string {
	return fmt.Sprintf("%s-%s-%s", source, option, strings.ToLower(strings.TrimSpace(query)))
}

// Get decodes the value stored under key into out. It reports false on a miss.
// Undecodable entries are treated as misses so the caller refetches.
func (c *Cache) Get(ctx context.Context, key string, out any) (bool, error) {
	data, err := c.repo.GetEntry(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		if errors.Is(err, storage.ErrKeyMismatch) {
			c.logger.Warn("cache digest collision", "key", key)
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("dropping undecodable cache entry", "key", key, "error", err)
		return false, nil
	}
	c.logger.Debug("cache hit", "key", key)
	return true, nil
}

// Put stores value under key, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return c.repo.PutEntry(ctx, key, data)
}

// Clear drops every entry.
func (c *Cache) Clear(ctx context.Context) error {
	return c.repo.Clear(ctx)
}
