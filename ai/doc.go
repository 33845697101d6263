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

// Package ai provides abstractions for the AI services tekir talks to.
//
// This package defines interfaces for single-shot answers and streamed chat
// replies, the configuration shared by their implementations, and the
// default-model fallback policy.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Answerer: answers a search query with a selected model
//   - ChatStreamer: streams a chat reply for a conversation
//   - AIProvider: aggregates AI services for convenient initialization
//
// Fallback wraps an Answerer and a ChatStreamer: a failed call with a
// non-default model is retried exactly once with the default model. A failed
// call with the default model is surfaced unchanged. WithFallback exposes
// the same policy for any call shape.
//
// # Implementation Packages
//
//   - fetch: the hosted HTTP answer and chat endpoints
//   - ai/openai: OpenAI-compatible APIs through langchaingo
//   - ai/mock: test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public provider constructors (openai.NewProvider) return the ai.AIProvider
// interface. Test utility constructors (mock.NewMockAnswerer) return CONCRETE
// types to enable assertions via CallCount and Models.
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.NewConfig(ai.WithBackend(ai.BackendOpenAI)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	fallback := ai.NewFallback(provider.Answerer(), provider.ChatStreamer())
//	answer, err := fallback.Answer(ctx, "why is the sky blue", "gpt-4o-mini")
package ai
