package cache

import (
	"fmt"
	"time"
)

var defaultCache *Cache

// UseMemory switches the default cache to in-process storage.
func UseMemory(opts *Options) error {
	defaultCache = NewCache(NewMemoryProvider(opts))
	return nil
}

// UseRedis switches the default cache to redis.
func UseRedis(config *RedisConfig) error {
	provider, err := NewRedisProvider(config)
	if err != nil {
		return fmt.Errorf("redis cache: %w", err)
	}
	defaultCache = NewCache(provider)
	return nil
}

// GetDefaultCache returns the package default, creating a memory cache on
// first use when nothing was configured.
func GetDefaultCache() *Cache {
	if defaultCache == nil {
		_ = UseMemory(&Options{
			DefaultTTL: 5 * time.Minute,
			MaxSize:    10000,
		})
	}
	return defaultCache
}

// SetDefaultCache replaces the package default. Tests use this to swap in
// a throwaway cache.
func SetDefaultCache(cache *Cache) {
	defaultCache = cache
}

// Close releases the default cache, if one was created.
func Close() error {
	if defaultCache != nil {
		return defaultCache.Close()
	}
	return nil
}
