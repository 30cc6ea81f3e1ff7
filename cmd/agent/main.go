// The agent streams host telemetry to a telewire server over one
// persistent TCP connection.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rafaelqm/telewire/internal/config"
	"github.com/rafaelqm/telewire/internal/events"
	"github.com/rafaelqm/telewire/internal/otel"
	"github.com/rafaelqm/telewire/internal/producer"
	"github.com/rafaelqm/telewire/internal/sampler"
)

const version = "1.0.0"

func main() {
	defaults := config.DefaultProducer()

	addr := flag.String("addr", defaults.Addr, "Server address to stream telemetry to")
	interval := flag.Duration("interval", defaults.SampleInterval, "Sampling interval")
	backoff := flag.Duration("backoff", defaults.ReconnectBackoff, "Delay before the single reconnect attempt")
	withLoad := flag.Bool("with-load", defaults.WithLoad, "Additionally sample the 1-minute load average")
	otelExporter := flag.String("otel-exporter", "none", "OTel exporter: none, stdout, otlp-grpc, otlp-http")
	otelEndpoint := flag.String("otel-endpoint", "", "OTLP endpoint (e.g. localhost:4317)")
	otelInsecure := flag.Bool("otel-insecure", false, "Disable TLS for OTLP connections")
	flag.Parse()

	cfg := config.Producer{
		Addr:             *addr,
		SampleInterval:   *interval,
		ReconnectBackoff: *backoff,
		WithLoad:         *withLoad,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownObs, err := otel.Setup(ctx, "telewire-agent", version, *otelExporter, *otelEndpoint, *otelInsecure)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer shutdownObs(context.Background())

	log := events.NewEventLogger("producer")
	events.SetGlobalEventLogger(log)

	registry := sampler.HostRegistry(cfg.WithLoad)

	fmt.Printf("telewire agent %s\n", version)
	fmt.Printf("Streaming to %s every %s (metrics: %v)\n", cfg.Addr, cfg.SampleInterval, registry.Names())

	p := producer.New(cfg, registry, nil, log)
	if err := p.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
