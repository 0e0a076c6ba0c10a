package oracle

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/danielpatrickdp/vcalearn/internal/store"
)

// #region cached-oracle

// CachedOracle answers from a query cache and forwards only the misses, in
// one batch, to the wrapped oracle.
type CachedOracle struct {
	inner  MembershipOracle
	cache  store.QueryCache
	target string
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedOracle caches answers for target; target scopes the cache so one
// store can serve several systems.
func NewCachedOracle(inner MembershipOracle, cache store.QueryCache, target string) *CachedOracle {
	return &CachedOracle{inner: inner, cache: cache, target: target}
}

func (o *CachedOracle) Answer(ctx context.Context, queries []Query) ([]bool, error) {
	keys := make([]string, len(queries))
	for i, q := range queries {
		keys[i] = q.Word().Key()
	}
	known, err := o.cache.Lookup(ctx, o.target, keys)
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}

	out := make([]bool, len(queries))
	var missing []Query
	var missingAt []int
	pending := make(map[string]bool)
	for i, k := range keys {
		if v, ok := known[k]; ok {
			out[i] = v
			continue
		}
		missingAt = append(missingAt, i)
		if !pending[k] {
			pending[k] = true
			missing = append(missing, queries[i])
		}
	}
	o.hits.Add(int64(len(queries) - len(missingAt)))
	o.misses.Add(int64(len(missing)))
	if len(missing) == 0 {
		return out, nil
	}

	answers, err := o.inner.Answer(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(answers) != len(missing) {
		return nil, fmt.Errorf("oracle answered %d of %d queries", len(answers), len(missing))
	}
	fresh := make(map[string]bool, len(missing))
	for i, q := range missing {
		fresh[q.Word().Key()] = answers[i]
	}
	for _, i := range missingAt {
		out[i] = fresh[keys[i]]
	}
	if err := o.cache.Save(ctx, o.target, fresh); err != nil {
		log.Printf("[ORACLE] cache save failed for %s: %v", o.target, err)
	}
	return out, nil
}

// Stats returns cache hits and forwarded queries.
func (o *CachedOracle) Stats() (hits, misses int64) {
	return o.hits.Load(), o.misses.Load()
}

// #endregion cached-oracle
