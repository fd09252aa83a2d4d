package sop

import (
	"sync"
	"time"
)

type scriptEntry struct {
	script   string
	cachedAt time.Time
}

// InMemoryScriptCache is a simple in-memory implementation of ScriptCache.
// Thread-safe for concurrent access.
type InMemoryScriptCache struct {
	entries map[string]scriptEntry
	config  CacheConfig
	mu      sync.RWMutex
}

// NewInMemoryScriptCache creates a new in-memory script cache.
func NewInMemoryScriptCache(config CacheConfig) *InMemoryScriptCache {
	return &InMemoryScriptCache{
		entries: make(map[string]scriptEntry),
		config:  config,
	}
}

// Get retrieves the cached script for a SOP.
// Returns false if there is no entry or the entry has expired.
func (c *InMemoryScriptCache) Get(sopID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[sopID]
	if !ok {
		return "", false
	}

	if c.config.TTL > 0 && time.Since(entry.cachedAt) > c.config.TTL {
		return "", false
	}

	return entry.script, true
}

// Set stores compiled script text for a SOP.
func (c *InMemoryScriptCache) Set(sopID, script string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[sopID] = scriptEntry{
		script:   script,
		cachedAt: time.Now(),
	}
}

// Invalidate drops the cached script for one SOP.
func (c *InMemoryScriptCache) Invalidate(sopID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, sopID)
}

// InvalidateAll drops every cached script.
func (c *InMemoryScriptCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]scriptEntry)
}
