package chat

import "errors"

var (
	// ErrSessionNotFound is returned when no session has the given id.
	ErrSessionNotFound = errors.New("chat session not found")

	// ErrNoPlaceholder is returned when a session's last message is not an
	// assistant message that a reply can be written into.
	ErrNoPlaceholder = errors.New("last message is not an assistant placeholder")

	// ErrReplyInProgress is returned when a reply is already streaming into
	// the session.
	ErrReplyInProgress = errors.New("a reply is already in progress")

	// ErrUnsupportedFormat is returned for unknown export formats.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
