// Package cache implements the fingerprint-keyed analysis cache: an
// in-process memory layer in front of a pluggable backing store.
package cache

import (
	"context"
	"errors"
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/trustlens/trustlens/internal/domain/analysis"
)

const cleanupInterval = 10 * time.Minute

// Cache resolves analysis records by content fingerprint. Lookups never
// fail: absence and backing-store errors both surface as a miss, so the
// orchestrator proceeds with a fresh analysis either way. Saves are
// best-effort; a store outage only costs the dedup benefit.
//
// No cross-request locking: racing identical-fingerprint requests may
// both compute and both store, last writer wins.
type Cache struct {
	memory *gocache.Cache
	store  analysis.Store
}

// New creates a cache. store may be nil, in which case only the memory
// layer is used and records live for memoryTTL within the process.
func New(store analysis.Store, memoryTTL time.Duration) *Cache {
	return &Cache{
		memory: gocache.New(memoryTTL, cleanupInterval),
		store:  store,
	}
}

// Lookup returns the cached record for a fingerprint, if any. A hit in
// the backing store is promoted to the memory layer.
func (c *Cache) Lookup(ctx context.Context, hash string) (*analysis.Record, bool) {
	if val, found := c.memory.Get(hash); found {
		return val.(*analysis.Record), true
	}

	if c.store == nil {
		return nil, false
	}

	rec, err := c.store.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, analysis.ErrNotFound) {
			log.Printf("cache lookup failed hash=%.16s: %v", hash, err)
		}
		return nil, false
	}

	c.memory.Set(hash, rec, gocache.DefaultExpiration)
	return rec, true
}

// Save upserts a record under its fingerprint. Backing-store failures
// are logged and swallowed; the caller already holds the outcome and
// must return it regardless.
func (c *Cache) Save(ctx context.Context, rec *analysis.Record) {
	c.memory.Set(rec.Hash, rec, gocache.DefaultExpiration)

	if c.store == nil {
		return
	}
	if err := c.store.Put(ctx, rec); err != nil {
		log.Printf("cache store failed hash=%.16s: %v", rec.Hash, err)
	}
}
