package cache

import (
	"context"
	"time"
)

// Provider is the storage backend behind the Cache front. Providers hold
// opaque bytes; JSON encoding lives in Cache.
type Provider interface {
	// Get returns the stored bytes, or false when the key is absent or
	// expired.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key. A zero ttl falls back to the provider's
	// default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes one key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteByPattern removes every key matching pattern. The memory
	// provider reads the pattern as a regular expression, redis as a glob;
	// the query-total key layout matches under both readings.
	DeleteByPattern(ctx context.Context, pattern string) error

	// Clear drops all entries.
	Clear(ctx context.Context) error

	// Close releases the provider's resources.
	Close() error
}

// Options configures a provider.
type Options struct {
	// DefaultTTL applies when Set gets a zero ttl.
	DefaultTTL time.Duration

	// MaxSize caps the entry count of the memory provider. Zero means
	// unbounded.
	MaxSize int
}
