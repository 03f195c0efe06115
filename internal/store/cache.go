package store

import (
	"context"
	"sync"
	"time"

	"github.com/shardviz/shardviz/internal/snapshot"
)

// Cache is a read-through cache for loaded steps, keyed by
// "<test>/<folder>/<t>". Entries are immutable once inserted: snapshots
// never change after being written upstream, so implementations may hand out
// shared values.
type Cache interface {
	Get(ctx context.Context, key string) (*snapshot.SimulationStep, bool)
	Set(ctx context.Context, key string, step *snapshot.SimulationStep)
	Close() error
}

type memoryEntry struct {
	step      *snapshot.SimulationStep
	expiresAt time.Time
}

// MemoryCache is an in-process TTL cache for simulation steps.
type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]*memoryEntry
	ttl      time.Duration
	maxSteps int
	stopCh   chan struct{}
}

// NewMemoryCache creates a memory cache. maxSteps bounds the number of
// cached steps (0 = unbounded); ttl bounds entry lifetime.
func NewMemoryCache(ttl time.Duration, maxSteps int) *MemoryCache {
	cache := &MemoryCache{
		entries:  make(map[string]*memoryEntry),
		ttl:      ttl,
		maxSteps: maxSteps,
		stopCh:   make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// Get retrieves a step from cache
func (c *MemoryCache) Get(_ context.Context, key string) (*snapshot.SimulationStep, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		return nil, false
	}

	return entry.step, true
}

// Set stores a step in cache
func (c *MemoryCache) Set(_ context.Context, key string, step *snapshot.SimulationStep) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSteps > 0 && len(c.entries) >= c.maxSteps {
		if _, exists := c.entries[key]; !exists {
			c.evictSoonestLocked()
		}
	}

	c.entries[key] = &memoryEntry{
		step:      step,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// evictSoonestLocked drops the entry closest to expiry. Caller holds mu.
func (c *MemoryCache) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for key, entry := range c.entries {
		if victim == "" || entry.expiresAt.Before(soonest) {
			victim = key
			soonest = entry.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}

// Len returns the number of cached entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cleanup periodically removes expired entries
func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}

// Close stops the cleanup goroutine
func (c *MemoryCache) Close() error {
	close(c.stopCh)
	return nil
}
