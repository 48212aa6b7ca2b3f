package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks lookups served from a fresh entry
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ocds_cache_hits_total",
			Help: "Total number of OCDS cache hits",
		},
	)

	// CacheMisses tracks lookups that found no fresh entry
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ocds_cache_misses_total",
			Help: "Total number of OCDS cache misses",
		},
	)

	// CacheEvictions tracks stale entries deleted on lookup
	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ocds_cache_evictions_total",
			Help: "Total number of stale OCDS cache entries evicted on lookup",
		},
	)

	// CacheEntries tracks the number of live entries
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ocds_cache_entries",
			Help: "Current number of entries in the OCDS cache",
		},
	)

	// CacheSize tracks cached payload bytes
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ocds_cache_size_bytes",
			Help: "Current size of cached OCDS payloads in bytes",
		},
	)
)
