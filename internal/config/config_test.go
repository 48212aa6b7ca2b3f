package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configKeys = []string{
	"APP_NAME", "APP_ENV", "PORT", "ROUTE_PREFIX", "UPSTREAM_BASE_URL",
	"USER_AGENT", "UPSTREAM_TIMEOUT", "LOG_LEVEL", "LOG_PRETTY", "TRACING_ENABLED",
}

// isolate clears every config variable and moves into an empty directory so
// no stray .env file is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestNew_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cfg.App.Env != "development" {
		t.Errorf("App.Env = %q, want development", cfg.App.Env)
	}
	if cfg.HTTP.Port != "8080" {
		t.Errorf("HTTP.Port = %q, want 8080", cfg.HTTP.Port)
	}
	if cfg.HTTP.RoutePrefix != "/releases" {
		t.Errorf("HTTP.RoutePrefix = %q, want /releases", cfg.HTTP.RoutePrefix)
	}
	if cfg.Upstream.BaseURL != "https://ocds-api.etenders.gov.za/api" {
		t.Errorf("Upstream.BaseURL = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.UserAgent != "ocds-proxy/0.1.0" {
		t.Errorf("Upstream.UserAgent = %q", cfg.Upstream.UserAgent)
	}
	if cfg.Upstream.Timeout != 30*time.Second {
		t.Errorf("Upstream.Timeout = %s, want 30s", cfg.Upstream.Timeout)
	}
	if cfg.Log.Level != "info" || cfg.Log.Pretty {
		t.Errorf("Log = %+v, want info/not pretty", cfg.Log)
	}
	if cfg.Tracing.Enabled {
		t.Error("Tracing should be disabled by default")
	}
}

func TestNew_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ROUTE_PREFIX", "/api/ocds-releases")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("TRACING_ENABLED", "1")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cfg.HTTP.Port != "9090" {
		t.Errorf("HTTP.Port = %q, want 9090", cfg.HTTP.Port)
	}
	if cfg.HTTP.RoutePrefix != "/api/ocds-releases" {
		t.Errorf("HTTP.RoutePrefix = %q", cfg.HTTP.RoutePrefix)
	}
	if cfg.Upstream.Timeout != 5*time.Second {
		t.Errorf("Upstream.Timeout = %s, want 5s", cfg.Upstream.Timeout)
	}
	if !cfg.Log.Pretty {
		t.Error("Log.Pretty should be true")
	}
	if !cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled should be true")
	}
}

func TestNew_DotEnv(t *testing.T) {
	isolate(t)
	os.Unsetenv("PORT")
	os.Unsetenv("USER_AGENT")

	content := "PORT=7070\nUSER_AGENT=test-agent/1.0\n"
	if err := os.WriteFile(filepath.Join(".", ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cfg.HTTP.Port != "7070" {
		t.Errorf("HTTP.Port = %q, want 7070 from .env", cfg.HTTP.Port)
	}
	if cfg.Upstream.UserAgent != "test-agent/1.0" {
		t.Errorf("Upstream.UserAgent = %q, want value from .env", cfg.Upstream.UserAgent)
	}
}

func TestNew_InvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		errorMsg string
	}{
		{"bad timeout", "UPSTREAM_TIMEOUT", "soon", "UPSTREAM_TIMEOUT"},
		{"negative timeout", "UPSTREAM_TIMEOUT", "-1s", "must be >= 0"},
		{"bad pretty", "LOG_PRETTY", "maybe", "LOG_PRETTY"},
		{"bad tracing", "TRACING_ENABLED", "yes please", "TRACING_ENABLED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			_, err := New()
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errorMsg, err.Error())
			}
		})
	}
}
