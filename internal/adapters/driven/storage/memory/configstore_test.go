package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SeedAndGet(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"llm.provider":                  "anthropic",
		"retrieval.top_k":               int64(5),
		"ratelimit.requests_per_second": 1.5,
		"journal.enabled":               false,
	})

	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, 5, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 1.5, store.GetFloat("ratelimit.requests_per_second"), 1e-9)
	assert.False(t, store.GetBool("journal.enabled"))

	_, ok := store.Get("journal.enabled")
	assert.True(t, ok)
	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypeMismatchReturnsZero(t *testing.T) {
	store := NewConfigStore(map[string]any{"key": "text", "num": 7})

	assert.Equal(t, 0, store.GetInt("key"))
	assert.Equal(t, float64(0), store.GetFloat("key"))
	assert.False(t, store.GetBool("key"))
	assert.Equal(t, "", store.GetString("num"))
	assert.InDelta(t, 7.0, store.GetFloat("num"), 1e-9)
}

func TestConfigStore_SetOverwrites(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("chunker.chunk_size", 500))
	require.NoError(t, store.Set("chunker.chunk_size", 800))

	assert.Equal(t, 800, store.GetInt("chunker.chunk_size"))
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}
