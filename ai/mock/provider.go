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

package mock

import "github.com/poiesic/tekir/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock answerer and chat streamer instances.
type MockProvider struct {
	answerer *MockAnswerer
	streamer *MockChatStreamer
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockAnswerer()/GetMockStreamer() to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		answerer: NewMockAnswerer(),
		streamer: NewMockChatStreamer(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
func NewMockProviderWithServices(answerer *MockAnswerer, streamer *MockChatStreamer) ai.AIProvider {
	return &MockProvider{
		answerer: answerer,
		streamer: streamer,
	}
}

// Answerer returns the mock answerer.
func (p *MockProvider) Answerer() ai.Answerer {
	return p.answerer
}

// ChatStreamer returns the mock chat streamer.
func (p *MockProvider) ChatStreamer() ai.ChatStreamer {
	return p.streamer
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockAnswerer returns the underlying mock answerer for test assertions.
func (p *MockProvider) GetMockAnswerer() *MockAnswerer {
	return p.answerer
}

// GetMockStreamer returns the underlying mock streamer for test assertions.
func (p *MockProvider) GetMockStreamer() *MockChatStreamer {
	return p.streamer
}
