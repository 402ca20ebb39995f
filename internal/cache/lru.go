// Package cache memoizes conversion results.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ResultCache provides thread-safe LRU caching of generated code keyed by
// output style and input text.
type ResultCache struct {
	cache *lru.Cache[string, string]
}

// NewResultCache creates a new LRU cache with the specified maximum number of items.
func NewResultCache(maxItems int) (*ResultCache, error) {
	c, err := lru.New[string, string](maxItems)
	if err != nil {
		return nil, err
	}
	return &ResultCache{cache: c}, nil
}

// Key derives the cache key for an input rendered in a style.
func Key(style string, input []byte) string {
	h := sha256.New()
	h.Write([]byte(style))
	h.Write([]byte{0})
	h.Write(input)
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves generated code by key.
func (c *ResultCache) Get(key string) (string, bool) {
	return c.cache.Get(key)
}

// Put adds or updates generated code.
func (c *ResultCache) Put(key, code string) {
	c.cache.Add(key, code)
}

// Len returns the current number of items in the cache.
func (c *ResultCache) Len() int {
	return c.cache.Len()
}
