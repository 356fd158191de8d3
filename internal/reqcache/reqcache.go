// Package reqcache is an adapter-layer decorator over the Core Facade,
// caching analyze_bond responses by a fingerprint of the raw request
// fields, taken before resolution. It sits outside the core's call path entirely: the facade
// and everything it composes stays cache-free, keeping caching an
// adapter concern rather than a core one. Built on
// github.com/patrickmn/go-cache, an in-process TTL cache with the same
// "New(defaultExpiration, cleanupInterval)" shape used for short-lived
// response caching elsewhere in the retrieval pack.
package reqcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/quillhorn/bondengine/internal/facade"
)

// Cached wraps a *facade.Facade, memoizing AnalyzeBond by a fingerprint
// of its request fields.
type Cached struct {
	inner *facade.Facade
	cache *cache.Cache
}

// New wraps f with a cache holding entries for ttl, swept every
// cleanupInterval.
func New(f *facade.Facade, ttl, cleanupInterval time.Duration) *Cached {
	return &Cached{inner: f, cache: cache.New(ttl, cleanupInterval)}
}

func fingerprint(req facade.AnalyzeBondRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%.10f|%v|%+v", req.Identifier, req.Description, req.CleanPrice, req.SettlementDate, req.Overrides)
	return hex.EncodeToString(h.Sum(nil))
}

// AnalyzeBond serves from cache when the exact request fingerprint was
// seen within the TTL window; otherwise delegates to the facade and
// caches the result. Errors are never cached: a transient data-source
// failure must not stick around past its cause.
func (c *Cached) AnalyzeBond(ctx context.Context, req facade.AnalyzeBondRequest) (facade.AnalyzeBondResponse, error) {
	key := fingerprint(req)
	if v, ok := c.cache.Get(key); ok {
		return v.(facade.AnalyzeBondResponse), nil
	}

	resp, err := c.inner.AnalyzeBond(ctx, req)
	if err != nil {
		return facade.AnalyzeBondResponse{}, err
	}

	c.cache.SetDefault(key, resp)
	return resp, nil
}
