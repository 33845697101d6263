package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/poiesic/tekir/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestExport(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, core.DefaultModel())
	require.NoError(t, err)
	require.NoError(t, store.AppendUserMessage(ctx, id, "what is tekir?"))

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Export(&buf, store.Sessions(), FormatJSON))

		var out []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		require.Len(t, out, 1)
		assert.Equal(t, "what is tekir?", out[0]["title"])
		assert.Equal(t, true, out[0]["locked"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Export(&buf, store.Sessions(), FormatYAML))

		var out []map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
		require.Len(t, out, 1)
		assert.Equal(t, "what is tekir?", out[0]["title"])
		assert.Contains(t, out[0], "messages")
	})

	t.Run("unsupported", func(t *testing.T) {
		var buf bytes.Buffer
		err := Export(&buf, store.Sessions(), "csv")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}
