// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

// Package cache provides a bounded, thread-safe in-memory TTL cache.
//
// It backs the search result cache of the ranking engine. The cache is
// best-effort only: evicting it early or disabling it changes latency,
// never results. It is constructed and injected explicitly so lifecycle
// and tests stay deterministic; there is no package-level instance.
package cache

import (
	"crypto/sha256"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// entry is a cached value with its expiry.
type entry struct {
	data      any
	expiresAt time.Time
}

// Config holds cache construction parameters.
type Config struct {
	// TTL is the base lifetime of an entry.
	TTL time.Duration `koanf:"ttl" json:"ttl"`

	// Jitter is the maximum random extension added per entry, spreading
	// expiries so synchronized misses don't stampede the store.
	Jitter time.Duration `koanf:"jitter" json:"jitter"`

	// MaxEntries bounds the cache; inserting past the bound evicts the
	// entry closest to expiry. Zero means 1024.
	MaxEntries int `koanf:"max_entries" json:"max_entries"`

	// CleanupInterval is how often expired entries are swept.
	// Zero means 1 minute.
	CleanupInterval time.Duration `koanf:"cleanup_interval" json:"cleanup_interval"`
}

// Stats tracks cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Keys      int
}

// Cache is a bounded TTL map safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	cfg     Config

	statsMu sync.Mutex
	stats   Stats

	rngMu sync.Mutex
	rng   *rand.Rand

	done chan struct{}
	once sync.Once
}

// New creates a cache and starts its cleanup goroutine. Call Close when the
// owner shuts down.
func New(cfg Config) *Cache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1024
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	c := &Cache{
		entries: make(map[string]entry),
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // jitter only
		done:    make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get retrieves a value. Expired entries are removed and counted as misses.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.recordMiss()
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}

	c.recordHit()
	return e.data, true
}

// Set stores a value with the configured TTL plus a random jitter.
func (c *Cache) Set(key string, value any) {
	ttl := c.cfg.TTL
	if c.cfg.Jitter > 0 {
		c.rngMu.Lock()
		ttl += time.Duration(c.rng.Int63n(int64(c.cfg.Jitter)))
		c.rngMu.Unlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.cfg.MaxEntries {
		c.evictSoonestLocked()
	}
	c.entries[key] = entry{data: value, expiresAt: time.Now().Add(ttl)}
}

// evictSoonestLocked drops the entry closest to expiry. Caller holds mu.
func (c *Cache) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for k, e := range c.entries {
		if victim == "" || e.expiresAt.Before(soonest) {
			victim = k
			soonest = e.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
		c.recordEviction()
	}
}

// Delete removes a specific entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Close stops the cleanup goroutine. Idempotent.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.done) })
}

// GetStats returns a snapshot of the counters.
func (c *Cache) GetStats() Stats {
	c.statsMu.Lock()
	s := c.stats
	c.statsMu.Unlock()

	c.mu.RLock()
	s.Keys = len(c.entries)
	c.mu.RUnlock()
	return s
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			c.recordEviction()
		}
	}
}

func (c *Cache) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
}

func (c *Cache) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}

func (c *Cache) recordEviction() {
	c.statsMu.Lock()
	c.stats.Evictions++
	c.statsMu.Unlock()
}

// GenerateKey builds a cache key from a method name and parameters.
func GenerateKey(method string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
