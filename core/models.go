package core

//go:generate go run ../cmd/musgen

import (
	"regexp"
	"strings"
	"time"
)

// ID is a unique identifier for domain entities.
// Session IDs are drawn from a persisted database sequence, so they are
// monotonic across restarts.
type ID uint64

// bangPattern matches a marker character followed by letters at the start of
// the input or after whitespace.
var bangPattern = regexp.MustCompile(`(?:^|\s)![a-z]+`)

// Query is a raw text query as typed by the user.
type Query struct {
	Raw        string
	BangTarget string // Resolved redirect URL, empty when no bang resolved
}

// Trimmed returns the query with surrounding whitespace removed.
func (q Query) Trimmed() string {
	return strings.TrimSpace(q.Raw)
}

// HasBang reports whether the query contains something that looks like a bang
// command, whether or not it resolves to a known target.
func (q Query) HasBang() bool {
	return LooksLikeBang(q.Raw)
}

// LooksLikeBang reports whether text contains a bang-looking token.
func LooksLikeBang(text string) bool {
	return bangPattern.MatchString(strings.ToLower(text))
}

// SearchResult is a single web search hit. The backend's ordering is kept
// verbatim.
type SearchResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DisplayURL  string `json:"displayUrl"`
	URL         string `json:"url"`
	Source      string `json:"source"`
}

// Suggestion is one autocomplete candidate, in rank order.
type Suggestion struct {
	Query string `json:"query"`
}

// Thumbnail is an optional encyclopedia image.
type Thumbnail struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Summary types accepted from the encyclopedia.
const (
	SummaryTypeStandard       = "standard"
	SummaryTypeDisambiguation = "disambiguation"
)

// Summary is an encyclopedia summary for the best matching topic.
type Summary struct {
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Extract   string     `json:"extract"`
	Thumbnail *Thumbnail `json:"thumbnail,omitempty"`
	PageURL   string     `json:"pageUrl"`
}

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser is a message typed by the user.
	RoleUser Role = "user"
	// RoleAssistant is a reply produced by a model.
	RoleAssistant Role = "assistant"
)

// Message is one entry in a chat session's log.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatSession is one persisted conversation.
//
// Locked becomes true when the first user message is appended and never
// reverts; while Locked, Model does not change.
type ChatSession struct {
	ID          ID          `json:"id" yaml:"id"`
	Model       ModelOption `json:"model" yaml:"model"`
	Messages    []Message   `json:"messages" yaml:"messages"`
	CreatedAt   time.Time   `json:"createdAt" yaml:"created_at"`
	Locked      bool        `json:"locked" yaml:"locked"`
	CustomTitle string      `json:"customTitle,omitempty" yaml:"custom_title,omitempty"`
}

// UntitledChat is the display title of a session with nothing to name it by.
const UntitledChat = "Untitled Chat"

// Title returns the custom title if set, otherwise the first message when it
// was written by the user.
func (s *ChatSession) Title() string {
	if s.CustomTitle != "" {
		return s.CustomTitle
	}
	if len(s.Messages) > 0 && s.Messages[0].Role == RoleUser {
		return s.Messages[0].Content
	}
	return UntitledChat
}

// Clone returns a deep copy so callers never share the store's message slice.
func (s *ChatSession) Clone() *ChatSession {
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	return &c
}

// CacheEntry is the stored form of a cached payload. The logical key is kept
// next to the value so digest collisions can be detected on read.
type CacheEntry struct {
	Key     string
	Payload []byte
}
