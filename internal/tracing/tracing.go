// Package tracing wires the process-wide OpenTelemetry TracerProvider that
// invoker.go and manager.go's spans are recorded against. It intentionally
// stops short of wiring an OTLP exporter: plugboard is a library and CLI
// harness, not a long-running service with somewhere to ship spans, so the
// provider here just gives the always-on sampler a real home instead of
// falling back to otel's global no-op tracer.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Init installs a TracerProvider as the process-wide default and returns a
// shutdown func the caller should defer. serviceVersion is typically the
// build version string cmd/plugboard's version command prints.
func Init(serviceVersion string) (shutdown func(context.Context) error, err error) {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName("plugboard"),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
