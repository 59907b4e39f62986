package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

// Config controls trace export. An empty Endpoint disables export.
type Config struct {
	Endpoint string
	Insecure bool
}

// Setup installs a global tracer provider exporting over OTLP/gRPC and returns
// its shutdown function. Export failures at startup are logged, not fatal.
func Setup(ctx context.Context, serviceName string, cfg Config, log *zap.Logger) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if cfg.Endpoint == "" {
		return noop
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		log.Warn("otel exporter unavailable", zap.Error(err))
		return noop
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		log.Warn("otel resource error", zap.Error(err))
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("tracing enabled", zap.String("endpoint", cfg.Endpoint))
	return provider.Shutdown
}
