package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ExporterConfig configures where compile pipeline spans are shipped.
type ExporterConfig struct {
	// Endpoint is the OTLP/HTTP collector host:port, e.g. "otel-collector:4318".
	Endpoint string

	// ServiceName identifies this process in the backend. Defaults to
	// "wscompilerd".
	ServiceName string

	// Insecure disables TLS, for local collectors.
	Insecure bool

	// Headers are sent with every export request (e.g. an auth token).
	Headers map[string]string
}

// Exporter owns the OTLP tracer provider's lifecycle.
type Exporter struct {
	provider *sdktrace.TracerProvider
	exporter *otlptrace.Exporter
}

// NewExporter builds an OTLP/HTTP exporter and installs its tracer provider
// as the global one, so telemetry.GetTracer's fallback path picks it up.
func NewExporter(ctx context.Context, cfg ExporterConfig) (*Exporter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("telemetry: ExporterConfig.Endpoint is required")
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "wscompilerd"
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithHeaders(cfg.Headers),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", attribute.String("service.name", cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return &Exporter{provider: provider, exporter: exp}, nil
}

// Shutdown flushes and stops the tracer provider.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e.provider == nil {
		return nil
	}
	if err := e.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("telemetry: failed to shut down tracer provider: %w", err)
	}
	return nil
}
