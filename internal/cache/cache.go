// Package cache keeps short-lived lookup results, either in process or in a
// shared Redis/Valkey instance, behind one small interface.
package cache

import "context"

// EvictCallback is called when an entry is evicted from the cache.
// Redis relies on server-side expiry and never calls it.
type EvictCallback func(key string, value []byte)

// Cache is a byte-oriented key-value store with per-entry expiry.
type Cache interface {
	// Get returns the value stored under key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte)

	// Delete removes key. Missing keys are ignored.
	Delete(ctx context.Context, key string)

	// Len returns the number of live entries.
	Len() int

	// Close releases connections held by the cache.
	Close() error
}
