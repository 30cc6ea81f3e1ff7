package otel

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// MetricsConfig holds configuration for the OpenTelemetry metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active. Default: false (no-op).
	Enabled bool

	// ServiceName is the name of the service for metric attribution.
	ServiceName string

	// ServiceVersion is the version of the service.
	ServiceVersion string

	// ExporterType specifies which exporter to use.
	ExporterType ExporterType

	// OTLPEndpoint is the endpoint for OTLP exporters (e.g., "localhost:4317").
	OTLPEndpoint string

	// OTLPInsecure disables TLS for OTLP connections.
	OTLPInsecure bool

	// Attributes are additional attributes to add to all metrics.
	Attributes map[string]string
}

// DefaultMetricsConfig returns a default configuration with metrics disabled.
func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Enabled:      false,
		ServiceName:  "telewire",
		ExporterType: ExporterNone,
	}
}

// Metrics wraps OpenTelemetry metrics with telewire-specific helpers.
type Metrics struct {
	config        *MetricsConfig
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	shutdown      func(context.Context) error
	mu            sync.RWMutex

	producerState    atomic.Int64
	stateCallback    metric.Int64ObservableGauge
	stateCallbackReg metric.Registration

	// Metric instruments
	recordsSent      metric.Int64Counter
	recordsReceived  metric.Int64Counter
	malformedRecords metric.Int64Counter
	reconnectCounter metric.Int64Counter
	activeSessions   metric.Int64UpDownCounter
	tickLatency      metric.Float64Histogram
}

// globalMetrics is the singleton metrics instance.
var (
	globalMetrics   *Metrics
	globalMetricsMu sync.RWMutex
)

// NewMetrics creates a new Metrics instance with the given configuration.
func NewMetrics(ctx context.Context, cfg *MetricsConfig) (*Metrics, error) {
	if cfg == nil {
		cfg = DefaultMetricsConfig()
	}

	m := &Metrics{
		config: cfg,
	}

	if !cfg.Enabled || cfg.ExporterType == ExporterNone {
		// Use no-op meter when disabled
		m.meterProvider = sdkmetric.NewMeterProvider()
		m.meter = m.meterProvider.Meter(cfg.ServiceName)
		m.shutdown = func(context.Context) error { return nil }
		return m, nil
	}

	exporter, err := m.createExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	res, err := m.createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	m.meterProvider = mp
	m.meter = mp.Meter(cfg.ServiceName)
	m.shutdown = mp.Shutdown

	if err := m.registerInstruments(); err != nil {
		return nil, fmt.Errorf("failed to register metric instruments: %w", err)
	}

	return m, nil
}

// createExporter creates the appropriate metrics exporter based on configuration.
func (m *Metrics) createExporter(ctx context.Context, cfg *MetricsConfig) (sdkmetric.Exporter, error) {
	switch cfg.ExporterType {
	case ExporterStdout:
		return stdoutmetric.New()

	case ExporterOTLPGRPC:
		opts := []otlpmetricgrpc.Option{}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint))
		}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)

	case ExporterOTLPHTTP:
		opts := []otlpmetrichttp.Option{}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint))
		}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)

	default:
		return nil, fmt.Errorf("unknown exporter type: %s", cfg.ExporterType)
	}
}

// createResource creates the OpenTelemetry resource with service information.
func (m *Metrics) createResource(cfg *MetricsConfig) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
	}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}

	for k, v := range cfg.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", attrs...),
	)
}

// registerInstruments creates and registers all metric instruments.
func (m *Metrics) registerInstruments() error {
	var err error

	m.recordsSent, err = m.meter.Int64Counter(
		"telewire.records.sent",
		metric.WithDescription("Count of wire records written and flushed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create records sent counter: %w", err)
	}

	m.recordsReceived, err = m.meter.Int64Counter(
		"telewire.records.received",
		metric.WithDescription("Count of wire records decoded"),
	)
	if err != nil {
		return fmt.Errorf("failed to create records received counter: %w", err)
	}

	m.malformedRecords, err = m.meter.Int64Counter(
		"telewire.records.malformed",
		metric.WithDescription("Count of lines that failed to decode"),
	)
	if err != nil {
		return fmt.Errorf("failed to create malformed counter: %w", err)
	}

	m.reconnectCounter, err = m.meter.Int64Counter(
		"telewire.reconnects",
		metric.WithDescription("Count of producer reconnect events"),
	)
	if err != nil {
		return fmt.Errorf("failed to create reconnect counter: %w", err)
	}

	m.activeSessions, err = m.meter.Int64UpDownCounter(
		"telewire.sessions.active",
		metric.WithDescription("Number of active telemetry sessions"),
	)
	if err != nil {
		return fmt.Errorf("failed to create active sessions counter: %w", err)
	}

	m.tickLatency, err = m.meter.Float64Histogram(
		"telewire.tick.latency",
		metric.WithDescription("Latency of one sample-encode-send-flush cycle"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("failed to create tick latency histogram: %w", err)
	}

	m.stateCallback, err = m.meter.Int64ObservableGauge(
		"telewire.producer.state",
		metric.WithDescription("Producer connection state (0=disconnected 1=connected 2=reconnecting 3=fatal)"),
	)
	if err != nil {
		return fmt.Errorf("failed to create state gauge: %w", err)
	}

	m.stateCallbackReg, err = m.meter.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(m.stateCallback, m.producerState.Load())
			return nil
		},
		m.stateCallback,
	)
	if err != nil {
		return fmt.Errorf("failed to register state gauge callback: %w", err)
	}

	return nil
}

// RecordSent increments the sent-records counter.
func (m *Metrics) RecordSent(ctx context.Context) {
	if m.recordsSent == nil {
		return
	}

	m.recordsSent.Add(ctx, 1)
}

// RecordReceived increments the received-records counter.
func (m *Metrics) RecordReceived(ctx context.Context) {
	if m.recordsReceived == nil {
		return
	}

	m.recordsReceived.Add(ctx, 1)
}

// RecordMalformed increments the malformed-records counter.
func (m *Metrics) RecordMalformed(ctx context.Context) {
	if m.malformedRecords == nil {
		return
	}

	m.malformedRecords.Add(ctx, 1)
}

// RecordReconnect increments the reconnect counter with an outcome
// attribute ("recovered" or "fatal").
func (m *Metrics) RecordReconnect(ctx context.Context, outcome string) {
	if m.reconnectCounter == nil {
		return
	}

	m.reconnectCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// IncrementSessions increments the active sessions counter.
func (m *Metrics) IncrementSessions(ctx context.Context) {
	if m.activeSessions == nil {
		return
	}

	m.activeSessions.Add(ctx, 1)
}

// DecrementSessions decrements the active sessions counter.
func (m *Metrics) DecrementSessions(ctx context.Context) {
	if m.activeSessions == nil {
		return
	}

	m.activeSessions.Add(ctx, -1)
}

// RecordTickLatency records the duration of one producer tick in ms.
func (m *Metrics) RecordTickLatency(ctx context.Context, latencyMs float64, success bool) {
	if m.tickLatency == nil {
		return
	}

	m.tickLatency.Record(ctx, latencyMs, metric.WithAttributes(
		attribute.Bool("success", success),
	))
}

// SetProducerState sets the producer state for the observable gauge.
// Thread-safe; read by the gauge callback.
func (m *Metrics) SetProducerState(state int) {
	m.producerState.Store(int64(state))
}

// Shutdown gracefully shuts down the metrics provider, flushing any pending metrics.
func (m *Metrics) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stateCallbackReg != nil {
		if err := m.stateCallbackReg.Unregister(); err != nil {
			return fmt.Errorf("failed to unregister state callback: %w", err)
		}
	}

	if m.shutdown != nil {
		return m.shutdown(ctx)
	}
	return nil
}

// Enabled returns whether metrics collection is enabled.
func (m *Metrics) Enabled() bool {
	return m.config.Enabled && m.config.ExporterType != ExporterNone
}

// MeterProvider returns the underlying meter provider.
func (m *Metrics) MeterProvider() *sdkmetric.MeterProvider {
	return m.meterProvider
}

// SetGlobalMetrics sets the global metrics instance.
func SetGlobalMetrics(m *Metrics) {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	globalMetrics = m

	if m != nil && m.Enabled() {
		otel.SetMeterProvider(m.meterProvider)
	}
}

// GetGlobalMetrics returns the global metrics instance.
// Returns a no-op metrics instance if none has been set.
func GetGlobalMetrics() *Metrics {
	globalMetricsMu.RLock()
	defer globalMetricsMu.RUnlock()

	if globalMetrics == nil {
		return NoopMetrics()
	}

	return globalMetrics
}

// NoopMetrics returns a metrics instance that does nothing (for testing or when disabled).
func NoopMetrics() *Metrics {
	cfg := DefaultMetricsConfig()
	mp := sdkmetric.NewMeterProvider()
	return &Metrics{
		config:        cfg,
		meterProvider: mp,
		meter:         mp.Meter(cfg.ServiceName),
		shutdown:      func(context.Context) error { return nil },
	}
}
