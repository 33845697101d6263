package openai

import (
	"fmt"
	"strings"
	"time"
)

const answerSystemPrompt = `You are the answer box of a web search engine.
Answer the user's search query directly in a few short paragraphs.
Write plain prose. Do not ask follow-up questions.
If the query is ambiguous, answer its most common meaning.
Today's date is %s.`

const chatSystemPrompt = `You are a helpful assistant in a privacy-focused search engine.
Answer clearly and concisely. Use markdown where it helps readability.`

// buildAnswerPrompt returns the system prompt for single-shot answers.
func buildAnswerPrompt(now time.Time) string {
	return fmt.Sprintf(answerSystemPrompt, now.Format("2006-01-02"))
}

// buildChatPrompt returns the system prompt for chat sessions.
func buildChatPrompt() string {
	return strings.TrimSpace(chatSystemPrompt)
}
