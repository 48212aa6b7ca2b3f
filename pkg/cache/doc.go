// Package cache provides the in-memory response cache used by the OCDS proxy.
//
// The cache manager implements the proxy's memoization contract:
//
// - One entry per key, where the key is the fully resolved upstream URL
// - Fixed five minute TTL (DefaultTTL)
// - Lazy expiry: stale entries are deleted when a lookup finds them
// - Opaque payloads: bodies are stored and replayed byte-for-byte
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	// Create cache manager
//	manager := cache.NewManager()
//
//	// Create cache key from the upstream URL
//	key := cache.CacheKey{
//		URL: "https://ocds-api.etenders.gov.za/api/OCDSReleases?PageNumber=1&PageSize=50",
//	}
//
//	// Get from cache
//	entry, err := manager.Get(key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - fetch from upstream, then
//		entry = manager.Set(key, body)
//	}
//
// # Deterministic Time
//
// Freshness never reads the wall clock directly. IsFresh is a pure function of
// the entry, a timestamp and a TTL, and the manager takes its clock as an
// option so tests can advance time without sleeping:
//
//	now := time.Now()
//	manager := cache.NewManager(cache.WithClock(func() time.Time { return now }))
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - ocds_cache_hits_total - Fresh lookups
//   - ocds_cache_misses_total - Absent or stale lookups
//   - ocds_cache_evictions_total - Stale entries deleted on lookup
//   - ocds_cache_entries - Current number of entries
//   - ocds_cache_size_bytes - Current payload bytes held
//
// The cache is unbounded. Entries live until they are found stale or the
// process exits.
package cache
