package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etenders-ocds/ocds-proxy/internal/config"
	"github.com/etenders-ocds/ocds-proxy/pkg/cache"
	"github.com/etenders-ocds/ocds-proxy/pkg/client"
	"github.com/etenders-ocds/ocds-proxy/pkg/logging"
	"github.com/etenders-ocds/ocds-proxy/pkg/metrics"
	"github.com/etenders-ocds/ocds-proxy/pkg/proxy"
	"github.com/etenders-ocds/ocds-proxy/pkg/tracing"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Configuration from environment
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Setup(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("server")

	tracingCfg := tracing.DefaultConfig()
	tracingCfg.Enabled = cfg.Tracing.Enabled
	tracingCfg.ServiceName = cfg.App.Name
	tp, shutdownTracing, err := tracing.Setup(tracingCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up tracing")
	}

	// Upstream client
	upstream, err := client.New(client.Config{
		UserAgent: cfg.Upstream.UserAgent,
		Timeout:   cfg.Upstream.Timeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create upstream client")
	}

	p, err := proxy.New(proxy.Config{
		UpstreamBaseURL: cfg.Upstream.BaseURL,
		RoutePrefix:     cfg.HTTP.RoutePrefix,
		Fetcher:         upstream,
		Cache:           cache.NewManager(),
		TracerProvider:  tp,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create proxy")
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           newRouter(p),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Str("route_prefix", p.RoutePrefix()).
			Str("upstream", cfg.Upstream.BaseURL).
			Str("user_agent", cfg.Upstream.UserAgent).
			Msg("Starting OCDS proxy server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop

	logger.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error().Err(err).Msg("Tracing shutdown failed")
	}

	logger.Info().Int("cache_entries", p.Cache().Len()).Msg("Server stopped")
}

// newRouter wires the health and metrics endpoints and the proxy routes.
// Every other path is handed to the proxy as well so that it answers
// preflights and unroutable requests itself.
func newRouter(p *proxy.Proxy) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.Recovery(), accessLog())

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	handler := p.GinHandler()
	router.Any(p.RoutePrefix(), handler)
	router.Any(p.RoutePrefix()+"/release/*id", handler)
	router.NoRoute(handler)

	return router
}

func healthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// accessLog logs one line per request after it has been served.
func accessLog() gin.HandlerFunc {
	logger := logging.NewLogger("http")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", c.Writer.Header().Get(proxy.HeaderRequestID)).
			Msg("Request served")
	}
}
