// Package telemetry initializes OpenTelemetry tracing and Prometheus
// metrics for the oracle service. Network trace export is intentionally
// out of scope here (see the design notes on ambient-stack scope); the
// tracer provider still records spans so in-process instrumentation and
// tests can inspect them, while Prometheus carries the operational
// counters and histograms an operator actually dashboards against.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Shutdown releases resources acquired by Init.
type Shutdown func(ctx context.Context) error

// Init configures the global OpenTelemetry tracer provider and the W3C
// trace-context/baggage propagators. Spans are retained in-process
// (sdktrace.NewTracerProvider's default span processor) rather than
// exported over the network.
func Init(ctx context.Context, serviceName, version string) (Shutdown, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	return tp.Shutdown, nil
}

// Tracer returns the named tracer from the global tracer provider.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(name)
}
