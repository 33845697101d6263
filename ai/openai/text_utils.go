package openai

import (
	"strings"

	"github.com/poiesic/tekir/core"
	"github.com/tmc/langchaingo/llms"
)

// scrubQuery collapses whitespace in a search query.
func scrubQuery(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// toMessageContent converts a chat log into langchaingo messages after the
// system prompt. Empty assistant messages are placeholders for the reply
// being generated and are dropped.
func toMessageContent(system string, messages []core.Message) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(messages)+1)
	content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, system))
	for _, m := range messages {
		switch m.Role {
		case core.RoleUser:
			content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case core.RoleAssistant:
			if strings.TrimSpace(m.Content) == "" {
				continue
			}
			content = append(content, llms.TextParts(llms.ChatMessageTypeAI, m.Content))
		}
	}
	return content
}
