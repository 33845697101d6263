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

package badger

import "github.com/poiesic/tekir/storage"

// MemoryRepositories bundles in-memory repositories for tests.
type MemoryRepositories struct {
	Backend     *Backend
	Sessions    storage.SessionRepository
	Cache       storage.CacheRepository
	Preferences storage.PreferenceRepository
}

// NewMemoryRepositories creates in-memory session, cache and preference
// repositories sharing one backend. Call Close when done.
func NewMemoryRepositories() (*MemoryRepositories, error) {
	backend, err := NewMemoryBackend()
	if err != nil {
		return nil, err
	}

	sessions, err := NewSessionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &MemoryRepositories{
		Backend:     backend,
		Sessions:    sessions,
		Cache:       NewCacheRepository(backend),
		Preferences: NewPreferenceRepository(backend),
	}, nil
}

// Close closes all repositories and the backend.
func (m *MemoryRepositories) Close() error {
	m.Sessions.Close()
	m.Cache.Close()
	m.Preferences.Close()
	return m.Backend.Close()
}
