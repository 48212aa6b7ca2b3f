// Package client provides the upstream HTTP client for the eTenders OCDS API.
// Bodies are returned as opaque bytes; the client never decodes JSON.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public eTenders OCDS API root.
const DefaultBaseURL = "https://ocds-api.etenders.gov.za/api"

// Prometheus metrics for upstream operations.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocds_upstream_requests_total",
		Help: "Total upstream OCDS requests by endpoint and status",
	}, []string{"endpoint", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ocds_upstream_request_duration_seconds",
		Help:    "Upstream OCDS request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocds_upstream_errors_total",
		Help: "Total upstream OCDS errors by class",
	}, []string{"class"})
)

// Client fetches documents from the upstream OCDS API.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent upstream
	UserAgent string

	// Timeout applied by the HTTP client. Zero means no client-side timeout.
	Timeout time.Duration

	// HTTPClient overrides the transport (for testing). Timeout is ignored
	// when set.
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		UserAgent: "ocds-proxy/0.1.0",
		Timeout:   30 * time.Second,
	}
}

// New creates a new upstream client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		logger:     log.With().Str("component", "ocds-client").Logger(),
	}, nil
}

// Fetch performs a GET request to rawURL and returns the full response body.
// A non-2xx status yields an *UpstreamError of class ErrorClassUpstreamHTTP;
// request, network and body read failures yield ErrorClassTransport. Fetch
// does not retry.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	endpoint := endpointLabel(rawURL)

	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, c.transportError(endpoint, rawURL, "create request", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", rawURL).
		Msg("Executing upstream request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(endpoint, rawURL, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)

		upstreamErrorsTotal.WithLabelValues(string(ErrorClassUpstreamHTTP)).Inc()
		upstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(ErrorClassUpstreamHTTP)).
			Msg("Upstream request error")

		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassUpstreamHTTP,
			URL:        rawURL,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(endpoint, rawURL, "read response body", err)
	}

	upstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	return body, nil
}

// transportError records and wraps a failure that produced no usable response.
func (c *Client) transportError(endpoint, rawURL, msg string, err error) error {
	upstreamErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
	upstreamRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()

	c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Upstream " + msg)

	return &UpstreamError{
		ErrorClass: ErrorClassTransport,
		URL:        rawURL,
		Message:    msg,
		Err:        err,
	}
}

// endpointLabel maps an upstream URL to a bounded metric label so ocids never
// become label values.
func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	if strings.Contains(u.Path, "/OCDSReleases/release/") {
		return "release"
	}
	if strings.HasSuffix(u.Path, "/OCDSReleases") {
		return "releases"
	}
	return "other"
}
