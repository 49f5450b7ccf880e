package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache wraps a Provider with JSON encoding. The search engine stores its
// query totals through this front.
type Cache struct {
	provider Provider
}

// NewCache wraps the given provider.
func NewCache(provider Provider) *Cache {
	return &Cache{provider: provider}
}

// Get unmarshals the cached value into dest. A miss is returned as an
// error so callers fall through to the live query.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := c.provider.Get(ctx, key)
	if !ok {
		return fmt.Errorf("key not found: %s", key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode cached value: %w", err)
	}
	return nil
}

// Set marshals value and stores it under key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	return c.provider.Set(ctx, key, data, ttl)
}

// Delete removes one key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.provider.Delete(ctx, key)
}

// DeleteByPattern removes every key matching the pattern.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) error {
	return c.provider.DeleteByPattern(ctx, pattern)
}

// Clear drops all entries.
func (c *Cache) Clear(ctx context.Context) error {
	return c.provider.Clear(ctx)
}

// Close releases the underlying provider.
func (c *Cache) Close() error {
	return c.provider.Close()
}
