// Package tracing builds the OpenTelemetry tracer provider used by the proxy.
// Tracing is optional: when disabled the proxy falls back to the global
// provider, which is a no-op unless something else installs one.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans created by this module.
const InstrumentationName = "github.com/etenders-ocds/ocds-proxy"

// Config holds tracing configuration.
type Config struct {
	// Enabled turns on span export.
	Enabled bool

	// ServiceName is recorded as the service.name resource attribute.
	ServiceName string

	// Output receives exported spans as JSON (default: os.Stdout).
	Output io.Writer

	// Pretty indents exported spans.
	Pretty bool
}

// DefaultConfig returns tracing disabled.
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		ServiceName: "ocds-proxy",
		Output:      os.Stdout,
	}
}

// Setup creates a tracer provider exporting to cfg.Output and installs it,
// together with the W3C trace-context propagator, as the global default.
// It returns a shutdown function that flushes pending spans. When tracing is
// disabled Setup installs nothing and the shutdown function is a no-op.
func Setup(cfg Config) (trace.TracerProvider, func(context.Context) error, error) {
	if !cfg.Enabled {
		return otel.GetTracerProvider(), func(context.Context) error { return nil }, nil
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	opts := []stdouttrace.Option{stdouttrace.WithWriter(output)}
	if cfg.Pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}

	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create stdout exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, tp.Shutdown, nil
}

// Tracer returns the module tracer from tp, or from the global provider when
// tp is nil.
func Tracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(InstrumentationName)
}
