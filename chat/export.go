package chat

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/tekir/core"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// exportedSession adds the derived title to a session.
type exportedSession struct {
	Title            string `json:"title" yaml:"title"`
	core.ChatSession `yaml:",inline"`
}

// Export writes sessions to w in format.
func Export(w io.Writer, sessions []*core.ChatSession, format string) error {
	out := make([]exportedSession, len(sessions))
	for i, sess := range sessions {
		out[i] = exportedSession{Title: sess.Title(), ChatSession: *sess}
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
