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

package ai

import (
	"errors"
	"strings"
	"time"

	"github.com/poiesic/tekir/core"
)

// Backend names accepted by Config.Backend.
const (
	// BackendHTTP talks to the hosted answer and chat endpoints.
	BackendHTTP = "http"
	// BackendOpenAI talks to an OpenAI-compatible API through langchaingo.
	BackendOpenAI = "openai"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Backend selects the implementation: BackendHTTP or BackendOpenAI.
	Backend string

	// AnswerHost is the base URL of the single-shot answer service.
	// The model id is appended as a path segment.
	// Example: "https://searchai.tekir.co"
	AnswerHost string

	// ChatURL is the endpoint that streams chat replies.
	// Example: "https://tekir.co/api/chat"
	ChatURL string

	// OpenAIHost is the base URL for an OpenAI-compatible API.
	// Example: "http://localhost:11434/v1" for a local server
	OpenAIHost string

	// OpenAIToken is the API token for the OpenAI-compatible backend.
	// Local servers usually accept any value.
	OpenAIToken string

	// ModelMap translates model option ids to backend model names for the
	// OpenAI-compatible backend. Unmapped ids are passed through unchanged.
	ModelMap map[string]string

	// DefaultModel is the id every failed request falls back to.
	// Default: core.DefaultModelID
	DefaultModel string

	// Timeout bounds a single HTTP request. Zero means no timeout.
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend selects the AI backend.
func WithBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithAnswerHost sets the answer service base URL.
func WithAnswerHost(host string) ConfigOption {
	return func(c *Config) {
		c.AnswerHost = host
	}
}

// WithChatURL sets the chat streaming endpoint.
func WithChatURL(url string) ConfigOption {
	return func(c *Config) {
		c.ChatURL = url
	}
}

// WithOpenAIHost sets the OpenAI-compatible API host.
func WithOpenAIHost(host string) ConfigOption {
	return func(c *Config) {
		c.OpenAIHost = host
	}
}

// WithOpenAIToken sets the OpenAI-compatible API token.
func WithOpenAIToken(token string) ConfigOption {
	return func(c *Config) {
		c.OpenAIToken = token
	}
}

// WithModelMapping maps a model option id to a backend model name.
func WithModelMapping(id, backendModel string) ConfigOption {
	return func(c *Config) {
		if c.ModelMap == nil {
			c.ModelMap = make(map[string]string)
		}
		c.ModelMap[id] = backendModel
	}
}

// WithDefaultModel sets the fallback model id.
func WithDefaultModel(id string) ConfigOption {
	return func(c *Config) {
		c.DefaultModel = id
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// DefaultConfig returns a Config pointing at the hosted tekir services.
func DefaultConfig() *Config {
	return &Config{
		Backend:      BackendHTTP,
		AnswerHost:   "https://searchai.tekir.co",
		ChatURL:      "https://tekir.co/api/chat",
		OpenAIHost:   "http://localhost:11434/v1",
		OpenAIToken:  "tekir",
		DefaultModel: core.DefaultModelID,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBackend(BackendOpenAI),
//	    WithOpenAIHost("http://localhost:11434"),
//	    WithModelMapping("llama-3-1-80b", "llama3.1:8b"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Trailing slashes are removed from the hosted URLs and the OpenAI host gets
// the /v1 suffix most compatible servers require.
func (c *Config) Normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.AnswerHost = strings.TrimSuffix(c.AnswerHost, "/")
	c.ChatURL = strings.TrimSuffix(c.ChatURL, "/")
	if c.OpenAIHost != "" && !strings.HasSuffix(c.OpenAIHost, "/v1") {
		c.OpenAIHost = strings.TrimSuffix(c.OpenAIHost, "/")
		c.OpenAIHost = c.OpenAIHost + "/v1"
	}
	if c.DefaultModel == "" {
		c.DefaultModel = core.DefaultModelID
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Backend {
	case BackendHTTP:
		if c.AnswerHost == "" {
			return errors.New("ai config: AnswerHost is required")
		}
		if c.ChatURL == "" {
			return errors.New("ai config: ChatURL is required")
		}
	case BackendOpenAI:
		if c.OpenAIHost == "" {
			return errors.New("ai config: OpenAIHost is required")
		}
	default:
		return errors.New("ai config: Backend must be \"http\" or \"openai\"")
	}
	if _, ok := core.LookupModel(c.DefaultModel); !ok {
		return errors.New("ai config: DefaultModel is not a known model")
	}
	if c.Timeout < 0 {
		return errors.New("ai config: Timeout cannot be negative")
	}
	return nil
}

// BackendModel returns the backend model name for a model option id.
func (c *Config) BackendModel(id string) string {
	if m, ok := c.ModelMap[id]; ok && m != "" {
		return m
	}
	return id
}
