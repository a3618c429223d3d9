// Package telemetry builds the logger, tracer provider and meter provider shared by libralend binaries.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"libralend/internal/config"
)

// NewLogger returns a structured logger writing to w in the configured format.
func NewLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler
	if cfg.LogFormat == config.FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("service", cfg.ServiceName)
}

// InitTracing installs a global tracer provider exporting over OTLP/HTTP. Without an
// endpoint the global no-op provider stays in place. The returned func flushes and stops export.
func InitTracing(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	if cfg.OTLPEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(serviceResource(cfg)),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// MetricsExportInterval is how often InitMetrics pushes collected metrics.
const MetricsExportInterval = 5 * time.Second

// InitMetrics installs a global meter provider. With an endpoint, metrics are pushed over
// OTLP/HTTP every MetricsExportInterval. Without one, reader (if non-nil) is the only sink,
// which lets callers collect in-process. Shutdown on the returned provider flushes and stops export.
func InitMetrics(ctx context.Context, cfg config.Config, reader sdkmetric.Reader) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(serviceResource(cfg))}

	if reader != nil {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	if cfg.OTLPEndpoint != "" {
		exporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(cfg.OTLPEndpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(MetricsExportInterval)),
		))
	}

	provider := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(provider)

	return provider, nil
}

func serviceResource(cfg config.Config) *resource.Resource {
	return resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))
}
