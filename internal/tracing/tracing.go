// Package tracing wraps OpenTelemetry's OTLP/gRPC exporter, adapted
// from the teacher's kit/trace package. NoOp exists for
// tests and for operators who have not configured a collector.
package tracing

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// New creates a batching OTLP/gRPC tracer for serviceName. Callers that
// have no collector configured should use NoOp instead.
func New(ctx context.Context, serviceName string) (trace.Tracer, error) {
	client := otlptracegrpc.NewClient()
	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, errors.Wrap(err, "create tracer failed")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(serviceName)),
	)

	return tp.Tracer(serviceName), nil
}

// NoOp returns a tracer that records nothing, for local development and
// tests.
func NoOp() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("no-op")
}

func newResource(serviceName string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)
}
