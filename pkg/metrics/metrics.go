// Package metrics provides the Prometheus registry and scrape handler for the
// OCDS proxy. Metrics themselves are defined next to the code that updates
// them (cache, client, proxy) and registered there via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the proxy.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the HTTP handler serving the default gatherer in the
// Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - ocds_cache_hits_total (Counter): Lookups served from a fresh entry
//   - ocds_cache_misses_total (Counter): Lookups that found no fresh entry
//   - ocds_cache_evictions_total (Counter): Stale entries deleted on lookup
//   - ocds_cache_entries (Gauge): Current number of entries
//   - ocds_cache_size_bytes (Gauge): Current cached payload bytes
//
// Upstream Metrics (pkg/client):
//   - ocds_upstream_requests_total{endpoint, status} (Counter): Upstream requests by endpoint and HTTP status
//   - ocds_upstream_request_duration_seconds{endpoint} (Histogram): Upstream request duration
//   - ocds_upstream_errors_total{class} (Counter): Upstream failures by class (upstream_http, transport)
//
// Proxy Metrics (pkg/proxy):
//   - ocds_proxy_requests_total{route, cache, status} (Counter): Inbound requests by route, cache status and response status
//   - ocds_proxy_request_duration_seconds{route} (Histogram): Inbound request handling time
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(ocds_cache_hits_total[5m])) /
//   (sum(rate(ocds_cache_hits_total[5m])) + sum(rate(ocds_cache_misses_total[5m])))
//
//   # Proxy Error Rate
//   sum(rate(ocds_proxy_requests_total{status="500"}[5m]))
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(ocds_upstream_request_duration_seconds_bucket[5m]))
//
//   # Unbounded cache growth
//   ocds_cache_size_bytes
