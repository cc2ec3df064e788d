package config

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter/oteladapters"
	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter/postgresengine"
)

const shutdownTimeout = 5 * time.Second

// ObservabilityProviders holds the OpenTelemetry providers of a filterctl process.
// Metrics are collected on demand through Reader.
type ObservabilityProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Reader         *sdkmetric.ManualReader
	Resource       *resource.Resource
	serviceName    string
}

// NewObservabilityProviders creates tracer and meter providers identified by cfg.ServiceName
// and registers them globally. Additional span processors, e.g. exporters, can be passed in.
func NewObservabilityProviders(
	ctx context.Context,
	cfg ObservabilityConfig,
	spanProcessors ...sdktrace.SpanProcessor,
) (*ObservabilityProviders, error) {

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	traceOptions := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, processor := range spanProcessors {
		traceOptions = append(traceOptions, sdktrace.WithSpanProcessor(processor))
	}

	tracerProvider := sdktrace.NewTracerProvider(traceOptions...)

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &ObservabilityProviders{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Reader:         reader,
		Resource:       res,
		serviceName:    cfg.ServiceName,
	}, nil
}

// StoreOptions wires the providers into an AttributeStore through the otel adapters.
// Log records go through handler so they carry trace and span ids.
func (p *ObservabilityProviders) StoreOptions(handler slog.Handler) []postgresengine.Option {
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)

	return []postgresengine.Option{
		postgresengine.WithMetrics(p.MetricsCollector()),
		postgresengine.WithTracing(oteladapters.NewTracingCollector(p.TracerProvider.Tracer(p.serviceName))),
		postgresengine.WithContextualLogger(logger),
	}
}

// MetricsCollector returns a collector recording into the meter provider.
func (p *ObservabilityProviders) MetricsCollector() *oteladapters.MetricsCollector {
	return oteladapters.NewMetricsCollector(p.MeterProvider.Meter(p.serviceName))
}

// Shutdown flushes and stops both providers.
func (p *ObservabilityProviders) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return errors.Join(
		p.TracerProvider.Shutdown(ctx),
		p.MeterProvider.Shutdown(ctx),
	)
}
