package cache

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
	touched time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// MemoryProvider keeps entries in a mutex-guarded map. Expiry is checked
// on access; when the size cap is hit the least recently touched entry
// makes room.
type MemoryProvider struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	opts    Options
}

// NewMemoryProvider creates an in-process provider.
func NewMemoryProvider(opts *Options) *MemoryProvider {
	if opts == nil {
		opts = &Options{
			DefaultTTL: 5 * time.Minute,
			MaxSize:    10000,
		}
	}
	return &MemoryProvider{
		entries: make(map[string]*memoryEntry),
		opts:    *opts,
	}
}

func (m *MemoryProvider) Get(ctx context.Context, key string) ([]byte, bool) {
	now := time.Now()

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e.expired(now) {
		delete(m.entries, key)
		return nil, false
	}
	e.touched = now
	return e.data, true
}

func (m *MemoryProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = m.opts.DefaultTTL
	}

	now := time.Now()
	var expires time.Time
	if ttl > 0 {
		expires = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.opts.MaxSize > 0 && len(m.entries) >= m.opts.MaxSize {
		if _, exists := m.entries[key]; !exists {
			m.evictOne(now)
		}
	}

	m.entries[key] = &memoryEntry{data: value, expires: expires, touched: now}
	return nil
}

func (m *MemoryProvider) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// DeleteByPattern treats the pattern as a regular expression matched
// anywhere in the key.
func (m *MemoryProvider) DeleteByPattern(ctx context.Context, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.entries {
		if re.MatchString(key) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *MemoryProvider) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*memoryEntry)
	return nil
}

func (m *MemoryProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	return nil
}

// evictOne drops an expired entry if one exists, otherwise the least
// recently touched. Callers hold the write lock.
func (m *MemoryProvider) evictOne(now time.Time) {
	var oldestKey string
	var oldestTouch time.Time

	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
			return
		}
		if oldestKey == "" || e.touched.Before(oldestTouch) {
			oldestKey = key
			oldestTouch = e.touched
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}
