// Package proxy implements the caching CORS proxy in front of the eTenders
// OCDS API. Handle does the routing, caching and error mapping and returns a
// plain Response; hosting adapters (net/http, gin) only deliver it.
package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/etenders-ocds/ocds-proxy/pkg/cache"
	"github.com/etenders-ocds/ocds-proxy/pkg/client"
	"github.com/etenders-ocds/ocds-proxy/pkg/logging"
	"github.com/etenders-ocds/ocds-proxy/pkg/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Prometheus metrics for inbound requests.
var (
	proxyRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocds_proxy_requests_total",
		Help: "Total proxy requests by route, cache status and response status",
	}, []string{"route", "cache", "status"})

	proxyRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ocds_proxy_request_duration_seconds",
		Help:    "Proxy request handling duration in seconds by route",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"route"})
)

// Fetcher retrieves the raw body of an upstream URL. Implementations return
// an error for any non-2xx status.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Config holds the proxy configuration.
type Config struct {
	// UpstreamBaseURL is the OCDS API root, e.g. https://ocds-api.etenders.gov.za/api
	UpstreamBaseURL string

	// RoutePrefix is the inbound list path; the release route hangs below it.
	RoutePrefix string

	// Fetcher performs upstream requests (REQUIRED).
	Fetcher Fetcher

	// Cache stores upstream bodies. A fresh manager is created when nil.
	Cache *cache.Manager

	// TracerProvider supplies the tracer. When nil the global provider is used.
	TracerProvider trace.TracerProvider

	// Propagators extracts inbound trace context. When nil the global
	// propagator is used.
	Propagators propagation.TextMapPropagator
}

// DefaultConfig returns a configuration pointing at the public eTenders API.
func DefaultConfig(fetcher Fetcher) Config {
	return Config{
		UpstreamBaseURL: client.DefaultBaseURL,
		RoutePrefix:     DefaultRoutePrefix,
		Fetcher:         fetcher,
	}
}

// Proxy is the caching proxy. It is safe for concurrent use.
type Proxy struct {
	baseURL     string
	prefix      string
	fetcher     Fetcher
	cache       *cache.Manager
	tracer      trace.Tracer
	propagators propagation.TextMapPropagator
	logger      zerolog.Logger
}

// New creates a new proxy.
func New(cfg Config) (*Proxy, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}

	u, err := url.Parse(cfg.UpstreamBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upstream base url must be http or https (got %q)", cfg.UpstreamBaseURL)
	}

	prefix := strings.TrimRight(cfg.RoutePrefix, "/")
	if !strings.HasPrefix(prefix, "/") {
		return nil, fmt.Errorf("route prefix must start with / and not be the root (got %q)", cfg.RoutePrefix)
	}

	cacheManager := cfg.Cache
	if cacheManager == nil {
		cacheManager = cache.NewManager()
	}

	propagators := cfg.Propagators
	if propagators == nil {
		propagators = otel.GetTextMapPropagator()
	}

	return &Proxy{
		baseURL:     strings.TrimRight(cfg.UpstreamBaseURL, "/"),
		prefix:      prefix,
		fetcher:     cfg.Fetcher,
		cache:       cacheManager,
		tracer:      tracing.Tracer(cfg.TracerProvider),
		propagators: propagators,
		logger:      log.With().Str("component", "ocds-proxy").Logger(),
	}, nil
}

// RoutePrefix returns the normalized inbound list path.
func (p *Proxy) RoutePrefix() string {
	return p.prefix
}

// Cache returns the cache manager (for testing).
func (p *Proxy) Cache() *cache.Manager {
	return p.cache
}

// Handle answers one inbound request. It never returns nil and never fails:
// upstream and transport errors become 500 responses.
func (p *Proxy) Handle(ctx context.Context, req *Request) *Response {
	startTime := time.Now()
	route, id := Classify(p.prefix, req)

	ctx, span := p.tracer.Start(ctx, spanMethod(req.Method)+" "+string(route), trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.Path),
		attribute.String("ocds.route", string(route)),
	)

	logger := logging.WithRequestID(p.logger, logging.RequestIDFromContext(ctx)).
		With().Str("route", string(route)).Logger()

	resp := p.handle(ctx, span, &logger, req, route, id)

	cacheStatus := resp.CacheStatus()
	cacheLabel := "none"
	if cacheStatus != "" {
		cacheLabel = strings.ToLower(cacheStatus)
		span.SetAttributes(attribute.String("ocds.cache_status", cacheStatus))
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))

	proxyRequestsTotal.WithLabelValues(string(route), cacheLabel, strconv.Itoa(resp.Status)).Inc()
	proxyRequestDuration.WithLabelValues(string(route)).Observe(time.Since(startTime).Seconds())

	return resp
}

// spanMethod bounds the method used in span names; anything outside the
// standard set becomes _OTHER.
func spanMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return method
	default:
		return "_OTHER"
	}
}

func (p *Proxy) handle(ctx context.Context, span trace.Span, logger *zerolog.Logger, req *Request, route Route, id string) *Response {
	switch route {
	case RoutePreflight:
		return preflightResponse()
	case RouteNone:
		logger.Debug().Str("path", req.Path).Msg("No route for path")
		return notFoundResponse()
	}

	target := ResolveTarget(p.baseURL, route, id, req.RawQuery)
	key := cache.CacheKey{URL: target}
	span.SetAttributes(attribute.String("ocds.cache_key", target))

	// Step 1: Check Cache (a stale entry is evicted by the lookup)
	if entry, err := p.cache.Get(key); err == nil {
		logger.Debug().
			Str("cache_key", target).
			Dur("age", entry.Age(time.Now())).
			Msg("Cache hit")
		return payloadResponse(entry.Data, CacheHit)
	}

	// Step 2: Fetch upstream. The fetch outlives an abandoned inbound request
	// so its result can still populate the cache.
	body, err := p.fetcher.Fetch(context.WithoutCancel(ctx), target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().
			Err(err).
			Str("cache_key", target).
			Str("error_class", string(client.ClassOf(err))).
			Msg("Proxy error")
		return errorResponse(err)
	}

	// Step 3: Update Cache on success
	entry := p.cache.Set(key, body)
	logger.Info().
		Str("cache_key", target).
		Int("bytes", entry.Size()).
		Msg("Cache miss - stored upstream response")

	return payloadResponse(entry.Data, CacheMiss)
}
