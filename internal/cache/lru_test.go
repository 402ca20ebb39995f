package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache(t *testing.T) {
	c, err := NewResultCache(2)
	require.NoError(t, err)

	c.Put("a", "code a")
	c.Put("b", "code b")

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "code a", got)

	// "b" is now least recently used.
	c.Put("c", "code c")
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestNewResultCache_InvalidSize(t *testing.T) {
	_, err := NewResultCache(0)
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	input := []byte(`{"a":1}`)

	assert.Equal(t, Key("verbose", input), Key("verbose", input))
	assert.NotEqual(t, Key("verbose", input), Key("terse", input))
	assert.NotEqual(t, Key("verbose", input), Key("verbose", []byte(`{"a":2}`)))
	assert.Len(t, Key("terse", nil), 64)
}
