package mock

import (
	"context"
	"fmt"
	"sync"
)

// MockAnswerer is a test double for ai.Answerer.
// It records every call and can be configured per model.
type MockAnswerer struct {
	// AnswerFunc is called by Answer if set.
	// If nil, answers "<model>: <query>".
	AnswerFunc func(ctx context.Context, query string, model string) (string, error)

	mu     sync.Mutex
	models []string
}

// NewMockAnswerer creates a mock answerer with default deterministic behavior.
func NewMockAnswerer() *MockAnswerer {
	return &MockAnswerer{}
}

// WithAnswerFunc sets the answer behavior and returns the mock for chaining.
func (m *MockAnswerer) WithAnswerFunc(fn func(ctx context.Context, query string, model string) (string, error)) *MockAnswerer {
	m.AnswerFunc = fn
	return m
}

// FailingModels makes Answer fail for the given model ids.
func (m *MockAnswerer) FailingModels(err error, models ...string) *MockAnswerer {
	failing := make(map[string]bool, len(models))
	for _, id := range models {
		failing[id] = true
	}
	m.AnswerFunc = func(ctx context.Context, query string, model string) (string, error) {
		if failing[model] {
			return "", err
		}
		return fmt.Sprintf("%s: %s", model, query), nil
	}
	return m
}

// Answer records the call and returns the configured answer.
func (m *MockAnswerer) Answer(ctx context.Context, query string, model string) (string, error) {
	m.mu.Lock()
	m.models = append(m.models, model)
	fn := m.AnswerFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query, model)
	}
	return fmt.Sprintf("%s: %s", model, query), nil
}

// CallCount returns the number of times Answer was called.
func (m *MockAnswerer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.models)
}

// Models returns the model id of every call in order.
func (m *MockAnswerer) Models() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.models))
	copy(out, m.models)
	return out
}

// Reset clears the recorded calls and custom behavior.
func (m *MockAnswerer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.models = nil
	m.AnswerFunc = nil
}
