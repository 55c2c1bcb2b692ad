package ollama

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/couchcryptid/house-energy-service/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedNarrator remembers narratives by prompt so repeated report requests
// for the same house and day do not hit the model again.
type CachedNarrator struct {
	inner domain.Narrator
	cache *lru.Cache[[sha256.Size]byte, string]
}

// NewCachedNarrator wraps inner with an LRU cache of maxEntries prompts.
func NewCachedNarrator(inner domain.Narrator, maxEntries int) (*CachedNarrator, error) {
	cache, err := lru.New[[sha256.Size]byte, string](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("narrative cache: %w", err)
	}
	return &CachedNarrator{inner: inner, cache: cache}, nil
}

// Narrate returns the cached narrative for prompt or asks the inner narrator.
// Failures are not cached.
func (c *CachedNarrator) Narrate(ctx context.Context, prompt string) (string, error) {
	key := sha256.Sum256([]byte(prompt))
	if text, ok := c.cache.Get(key); ok {
		return text, nil
	}
	text, err := c.inner.Narrate(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, text)
	return text, nil
}
