package cache

import (
	"time"
)

// DefaultTTL is how long an entry stays valid after it was stored.
const DefaultTTL = 5 * time.Minute

// CacheEntry represents a cached upstream response body.
type CacheEntry struct {
	// Key is the upstream URL the payload was fetched from
	Key string

	// Data is the raw response body, never decoded
	Data []byte

	// CachedAt is when we cached this response
	CachedAt time.Time
}

// IsFresh reports whether entry is still valid at now for the given ttl.
// An entry stored at t0 is fresh while now - t0 < ttl.
func IsFresh(entry *CacheEntry, now time.Time, ttl time.Duration) bool {
	if entry == nil {
		return false
	}
	return now.Sub(entry.CachedAt) < ttl
}

// Age returns how long ago the entry was stored, relative to now.
// Returns 0 if now is before CachedAt.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	age := now.Sub(e.CachedAt)
	if age < 0 {
		return 0
	}
	return age
}

// Size returns the payload size in bytes.
func (e *CacheEntry) Size() int {
	return len(e.Data)
}
