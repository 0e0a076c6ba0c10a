package store

import (
	"context"
	"sync"
)

// #region memory-cache
// MemoryCache is a QueryCache held in process memory.
type MemoryCache struct {
	mu      sync.RWMutex
	answers map[string]map[string]bool
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{answers: make(map[string]map[string]bool)}
}

func (c *MemoryCache) Lookup(_ context.Context, target string, words []string) (map[string]bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]bool)
	known := c.answers[target]
	for _, w := range words {
		if v, ok := known[w]; ok {
			out[w] = v
		}
	}
	return out, nil
}

func (c *MemoryCache) Save(_ context.Context, target string, answers map[string]bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	known, ok := c.answers[target]
	if !ok {
		known = make(map[string]bool, len(answers))
		c.answers[target] = known
	}
	for w, v := range answers {
		known[w] = v
	}
	return nil
}

// Len counts the cached answers for target.
func (c *MemoryCache) Len(target string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.answers[target])
}
// #endregion memory-cache
