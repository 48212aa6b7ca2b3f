// Package config loads the server configuration from the environment and,
// outside production, from an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type (
	Container struct {
		App      *App
		HTTP     *HTTP
		Upstream *Upstream
		Log      *Log
		Tracing  *Tracing
	}

	App struct {
		Name string
		Env  string
	}

	HTTP struct {
		Port        string
		RoutePrefix string
	}

	Upstream struct {
		BaseURL   string
		UserAgent string
		Timeout   time.Duration
	}

	Log struct {
		Level  string
		Pretty bool
	}

	Tracing struct {
		Enabled bool
	}
)

// New reads the configuration. A missing .env file is not an error.
func New() (*Container, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	timeout, err := getDuration("UPSTREAM_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	if timeout < 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be >= 0 (got %s)", timeout)
	}

	pretty, err := getBool("LOG_PRETTY", false)
	if err != nil {
		return nil, err
	}

	tracing, err := getBool("TRACING_ENABLED", false)
	if err != nil {
		return nil, err
	}

	return &Container{
		App: &App{
			Name: getEnv("APP_NAME", "ocds-proxy"),
			Env:  getEnv("APP_ENV", "development"),
		},
		HTTP: &HTTP{
			Port:        getEnv("PORT", "8080"),
			RoutePrefix: getEnv("ROUTE_PREFIX", "/releases"),
		},
		Upstream: &Upstream{
			BaseURL:   getEnv("UPSTREAM_BASE_URL", "https://ocds-api.etenders.gov.za/api"),
			UserAgent: getEnv("USER_AGENT", "ocds-proxy/0.1.0"),
			Timeout:   timeout,
		},
		Log: &Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: pretty,
		},
		Tracing: &Tracing{
			Enabled: tracing,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
