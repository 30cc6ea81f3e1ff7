package otel

import (
	"context"
	"fmt"
)

// Setup wires global metrics and tracing from CLI-level settings and
// returns a shutdown func. With exporter "none" (or empty) both are
// no-ops.
func Setup(ctx context.Context, service, version, exporter, endpoint string, insecure bool) (func(context.Context), error) {
	if exporter == "" {
		exporter = string(ExporterNone)
	}
	enabled := exporter != string(ExporterNone)

	metrics, err := NewMetrics(ctx, &MetricsConfig{
		Enabled:        enabled,
		ServiceName:    service,
		ServiceVersion: version,
		ExporterType:   ExporterType(exporter),
		OTLPEndpoint:   endpoint,
		OTLPInsecure:   insecure,
	})
	if err != nil {
		return nil, fmt.Errorf("otel metrics: %w", err)
	}
	SetGlobalMetrics(metrics)

	tracer, err := NewTracer(ctx, &Config{
		Enabled:        enabled,
		ServiceName:    service,
		ServiceVersion: version,
		ExporterType:   ExporterType(exporter),
		OTLPEndpoint:   endpoint,
		OTLPInsecure:   insecure,
		SampleRate:     1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("otel tracer: %w", err)
	}
	SetGlobalTracer(tracer)

	return func(ctx context.Context) {
		metrics.Shutdown(ctx)
		tracer.Shutdown(ctx)
	}, nil
}
