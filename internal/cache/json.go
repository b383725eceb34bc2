package cache

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

// JSON stores values of type T in a byte cache as JSON documents.
type JSON[T any] struct {
	inner  Cache
	logger zerolog.Logger
}

// NewJSON wraps inner. Encoding and decoding failures are logged to logger
// and treated as misses.
func NewJSON[T any](inner Cache, logger zerolog.Logger) *JSON[T] {
	return &JSON[T]{inner: inner, logger: logger}
}

// Get decodes the value stored under key. A value that no longer decodes is
// dropped from the cache.
func (j *JSON[T]) Get(ctx context.Context, key string) (T, bool) {
	var v T
	raw, ok := j.inner.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		j.logger.Warn().Err(err).Str("key", key).Msg("Dropping undecodable cache entry")
		j.inner.Delete(ctx, key)
		var zero T
		return zero, false
	}
	return v, true
}

// Set encodes v and stores it under key.
func (j *JSON[T]) Set(ctx context.Context, key string, v T) {
	raw, err := json.Marshal(v)
	if err != nil {
		j.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}
	j.inner.Set(ctx, key, raw)
}

// Close closes the underlying cache.
func (j *JSON[T]) Close() error {
	return j.inner.Close()
}
