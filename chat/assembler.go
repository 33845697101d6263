package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/tekir/core"
)

// readBufferSize is the largest chunk read from a reply stream at once.
const readBufferSize = 4096

// Assembler writes a streamed reply into a session's placeholder message.
type Assembler struct {
	store  *Store
	logger *slog.Logger
}

// NewAssembler creates an Assembler over store.
func NewAssembler(store *Store) *Assembler {
	return &Assembler{
		store:  store,
		logger: slog.Default().With("component", "chat-assembler"),
	}
}

// Assemble reads stream to the end, replacing the last message of session id
// with the text received so far after every chunk. The session is looked up
// by id on each update, so concurrent changes to other fields are kept.
//
// If reading fails or ctx is canceled, the placeholder is removed and an
// error wrapping core.ErrStreamInterrupted is returned. A rune split across
// chunks is held back until it is complete.
func (a *Assembler) Assemble(ctx context.Context, id core.ID, stream io.Reader) (string, error) {
	var (
		text    strings.Builder
		pending []byte
		buf     = make([]byte, readBufferSize)
		chunks  int
	)

	for {
		if err := ctx.Err(); err != nil {
			return "", a.abort(ctx, id, err)
		}

		n, readErr := stream.Read(buf)
		if n > 0 {
			chunks++
			pending = append(pending, buf[:n]...)
			var complete []byte
			complete, pending = splitComplete(pending)
			if len(complete) > 0 {
				text.Write(complete)
				if err := a.store.MutateLastMessage(ctx, id, text.String()); err != nil {
					return "", a.abort(ctx, id, err)
				}
			}
		}

		if readErr == nil {
			continue
		}
		if !errors.Is(readErr, io.EOF) {
			return "", a.abort(ctx, id, readErr)
		}
		break
	}

	if len(pending) > 0 {
		text.WriteString(strings.ToValidUTF8(string(pending), string(utf8.RuneError)))
		if err := a.store.MutateLastMessage(ctx, id, text.String()); err != nil {
			return "", a.abort(ctx, id, err)
		}
	}

	a.logger.Debug("reply assembled", "session", id, "chunks", chunks, "bytes", text.Len())
	return text.String(), nil
}

// abort removes the placeholder and wraps cause as a stream interruption.
func (a *Assembler) abort(ctx context.Context, id core.ID, cause error) error {
	if err := a.store.DiscardLastMessage(context.WithoutCancel(ctx), id); err != nil {
		a.logger.Warn("could not remove placeholder", "session", id, "error", err)
	}
	a.logger.Warn("reply stream interrupted", "session", id, "error", cause)
	if errors.Is(cause, core.ErrStreamInterrupted) {
		return cause
	}
	return core.NewFetchError("chat", core.ErrStreamInterrupted, cause)
}

// splitComplete splits b before a trailing incomplete UTF-8 sequence.
func splitComplete(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if !utf8.FullRune(b[i:]) {
			return b[:i], append([]byte(nil), b[i:]...)
		}
		break
	}
	return b, nil
}
