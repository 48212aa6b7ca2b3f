package cache

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache or was stale
	ErrCacheMiss = errors.New("cache miss")
)

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock used to stamp and check entries.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager handles caching operations with an in-memory map.
// It is safe for concurrent use. The lock only covers map access, so callers
// must not expect it to serialize upstream fetches for the same key.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewManager creates a new cache manager with the fixed DefaultTTL.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		entries: make(map[string]*CacheEntry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the entry lifetime used by the manager.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or the entry is stale. A stale
// entry is deleted before Get returns, so a failed refetch cannot bring it back.
func (m *Manager) Get(key CacheKey) (*CacheEntry, error) {
	cacheKey := key.String()
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[cacheKey]
	if !ok {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	if !IsFresh(entry, now, m.ttl) {
		m.deleteLocked(cacheKey)
		CacheEvictions.Inc()
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	// Cache hit
	CacheHits.Inc()
	return entry, nil
}

// Set stores data under key, stamped with the current time, replacing any
// previous entry. The returned entry owns a private copy of data.
func (m *Manager) Set(key CacheKey, data []byte) *CacheEntry {
	cacheKey := key.String()
	entry := &CacheEntry{
		Key:      cacheKey,
		Data:     bytes.Clone(data),
		CachedAt: m.now(),
	}
	if entry.Data == nil {
		entry.Data = []byte{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteLocked(cacheKey)
	m.entries[cacheKey] = entry
	CacheEntries.Inc()
	CacheSize.Add(float64(entry.Size()))

	return entry
}

// EvictIfStale deletes the entry for key if it exists and is no longer fresh.
// It reports whether an entry was deleted.
func (m *Manager) EvictIfStale(key CacheKey) bool {
	cacheKey := key.String()
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[cacheKey]
	if !ok || IsFresh(entry, now, m.ttl) {
		return false
	}

	m.deleteLocked(cacheKey)
	CacheEvictions.Inc()
	return true
}

// Delete removes a cache entry.
func (m *Manager) Delete(key CacheKey) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteLocked(key.String())
}

// Len returns the number of entries currently held, fresh or stale.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

// deleteLocked removes cacheKey and updates the size gauges. m.mu must be held.
func (m *Manager) deleteLocked(cacheKey string) {
	entry, ok := m.entries[cacheKey]
	if !ok {
		return
	}
	delete(m.entries, cacheKey)
	CacheEntries.Dec()
	CacheSize.Sub(float64(entry.Size()))
}
