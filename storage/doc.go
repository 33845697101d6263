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

// Package storage provides the storage abstraction layer for tekir.
//
// This package defines repository interfaces that decouple persistence from
// the chat store, the result cache and the preferences store. The BadgerDB
// implementation lives in storage/badger.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return concrete types that
// satisfy these interfaces; consumers accept the interfaces:
//
//	sessions, err := badger.NewSessionRepository(backend)  // *badger.SessionRepository
//	store, err := chat.NewStore(ctx, sessions)             // takes storage.SessionRepository
//
// # Architecture
//
//   - SessionRepository: the whole chat session collection under one key
//   - CacheRepository: flat key/value result cache, scoped to a backend
//   - PreferenceRepository: scalar user preferences, one key each
//
// Sessions and cache entries are encoded with the MUS serializers generated
// into the core package by cmd/musgen (see serialization.go). Cache
// payloads are JSON documents produced by the cache package; the repository
// treats them as opaque bytes.
//
// # Thread Safety
//
// All repository implementations must be safe for concurrent use.
//
// # Context Support
//
// All repository methods accept context.Context. Pass context.Background()
// for operations without specific timeout requirements.
package storage
