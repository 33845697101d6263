// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Answerer, ai.ChatStreamer,
// and ai.AIProvider for use in unit tests. The mocks record the model of every
// call so tests can assert how many attempts were made and in what order.
//
// # Usage in Tests
//
//	// Fail the selected model, succeed on the default
//	answerer := mock.NewMockAnswerer().FailingModels(errBoom, "gpt-4o-mini")
//	fallback := ai.NewFallback(answerer, nil)
//	text, err := fallback.Answer(ctx, "why", "gpt-4o-mini")
//	answerer.Models() // ["gpt-4o-mini", "llama-3-1-80b"]
//
//	// Stream a reply in fixed chunks
//	streamer := mock.NewMockChatStreamer("Hel", "lo")
//
// # Default Behavior
//
//   - MockAnswerer: answers "<model>: <query>"
//   - MockChatStreamer: streams its Chunks, or "ok"
//   - MockProvider: aggregates both
package mock
