package sop

import "time"

// ScriptCache provides an abstraction for caching compiled script text per
// SOP. The editor re-invokes compilation at high frequency; the service
// path avoids recompiling unchanged documents by caching here and
// invalidating on every mutation.
type ScriptCache interface {
	// Get retrieves the cached script for a SOP, false on miss or expiry
	Get(sopID string) (string, bool)

	// Set stores compiled script text for a SOP
	Set(sopID, script string)

	// Invalidate drops the cached script for one SOP
	Invalidate(sopID string)

	// InvalidateAll drops every cached script
	InvalidateAll()
}

// CacheConfig holds configuration for cache behavior.
type CacheConfig struct {
	// TTL is the time-to-live for cached entries.
	// Set to 0 for no expiration (manual invalidation only).
	TTL time.Duration
}

// DefaultCacheConfig returns sensible defaults for script caching.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL: 0, // No TTL - only invalidate on mutations
	}
}
