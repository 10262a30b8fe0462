// Package cache holds recently saved candidate records in memory, keyed by
// normalized email.
package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/jonathan/candidate-intake/internal/db"
)

// DefaultTTL is the absolute lifetime of a cached record.
const DefaultTTL = 5 * time.Minute

// CandidateCache is the cache contract used by the candidate service.
// Values are copies; mutating a returned record does not affect the cache.
type CandidateCache interface {
	Get(key string) (db.Candidate, bool)
	Set(key string, c db.Candidate)
	Delete(key string)
}

// TTLCache is a CandidateCache with absolute expiration. Reads do not extend
// an entry's lifetime. Len and Start/Stop are not part of CandidateCache.
type TTLCache struct {
	cache *ttlcache.Cache[string, db.Candidate]
}

var _ CandidateCache = (*TTLCache)(nil)

// Option configures a TTLCache.
type Option func(*options)

type options struct {
	ttl      time.Duration
	capacity uint64
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithCapacity bounds the number of entries. Zero means unbounded.
func WithCapacity(n uint64) Option {
	return func(o *options) { o.capacity = n }
}

// New creates a TTLCache. Call Start to run the expiry janitor.
func New(opts ...Option) *TTLCache {
	o := options{ttl: DefaultTTL}
	for _, opt := range opts {
		opt(&o)
	}

	cacheOpts := []ttlcache.Option[string, db.Candidate]{
		ttlcache.WithTTL[string, db.Candidate](o.ttl),
		ttlcache.WithDisableTouchOnHit[string, db.Candidate](),
	}
	if o.capacity > 0 {
		cacheOpts = append(cacheOpts, ttlcache.WithCapacity[string, db.Candidate](o.capacity))
	}
	return &TTLCache{cache: ttlcache.New(cacheOpts...)}
}

// Get returns the live entry for key.
func (c *TTLCache) Get(key string) (db.Candidate, bool) {
	item := c.cache.Get(key)
	if item == nil || item.IsExpired() {
		return db.Candidate{}, false
	}
	return item.Value(), true
}

// Set stores c under key, replacing any entry and restarting its TTL.
func (c *TTLCache) Set(key string, candidate db.Candidate) {
	c.cache.Set(key, candidate, ttlcache.DefaultTTL)
}

// Delete evicts key.
func (c *TTLCache) Delete(key string) {
	c.cache.Delete(key)
}

// Len reports the number of entries, including expired ones not yet swept.
func (c *TTLCache) Len() int {
	return c.cache.Len()
}

// Start runs the expiry janitor until Stop is called. It blocks.
func (c *TTLCache) Start() {
	c.cache.Start()
}

// Stop ends the janitor started by Start.
func (c *TTLCache) Stop() {
	c.cache.Stop()
}
