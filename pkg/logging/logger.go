// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	// Set global log level
	level := zerologLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	// Configure output
	var output io.Writer = cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	// Create logger with timestamp
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// zerologLevels maps every supported LogLevel to its zerolog level.
var zerologLevels = map[LogLevel]zerolog.Level{
	LevelDebug: zerolog.DebugLevel,
	LevelInfo:  zerolog.InfoLevel,
	LevelWarn:  zerolog.WarnLevel,
	LevelError: zerolog.ErrorLevel,
}

// ParseLevel converts a level name (as found in LOG_LEVEL) to a LogLevel.
// Unknown names map to LevelInfo.
func ParseLevel(name string) LogLevel {
	level := LogLevel(strings.ToLower(strings.TrimSpace(name)))
	if level == "warning" {
		level = LevelWarn
	}
	if _, ok := zerologLevels[level]; !ok {
		return LevelInfo
	}
	return level
}

// zerologLevel converts a LogLevel, normalized through ParseLevel, to zerolog.Level.
func zerologLevel(level LogLevel) zerolog.Level {
	return zerologLevels[ParseLevel(string(level))]
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// WithRequestID returns a logger carrying the request_id field, or logger
// unchanged when id is empty.
func WithRequestID(logger zerolog.Logger, id string) zerolog.Logger {
	if id == "" {
		return logger
	}
	return logger.With().Str("request_id", id).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache hits (key, age)
//   - Upstream request URLs
//   - Stale entry evictions
//
// Info: Normal operation events
//   - Cache misses stored from upstream
//   - Server startup/shutdown
//   - HTTP access log lines
//
// Warn: Warning conditions that don't prevent operation
//   - Upstream non-2xx responses
//   - Response write failures
//
// Error: Error conditions requiring attention
//   - Proxy errors returned to the caller as 500
//   - Transport failures (network, DNS, timeout)
//   - Configuration errors
//
// Context Fields:
//   - request_id: Inbound request identifier (X-Request-ID)
//   - route: Proxy route (releases, release, preflight, none)
//   - cache_key: Resolved upstream URL
//   - cache: HIT or MISS
//   - endpoint: Upstream endpoint label (releases, release)
//   - status: HTTP status code
//   - duration: Request duration
//   - error_class: upstream_http or transport
