// The server accepts one telemetry stream at a time, renders decoded
// records, and serves operator commands on stdin while sessions run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rafaelqm/telewire/internal/command"
	"github.com/rafaelqm/telewire/internal/config"
	"github.com/rafaelqm/telewire/internal/display"
	"github.com/rafaelqm/telewire/internal/events"
	"github.com/rafaelqm/telewire/internal/otel"
	"github.com/rafaelqm/telewire/internal/server"
)

const version = "1.0.0"

func main() {
	defaults := config.DefaultServer()

	addr := flag.String("addr", defaults.Addr, "Listen address")
	helper := flag.String("helper", defaults.HelperName, "External application launched by the open command")
	otelExporter := flag.String("otel-exporter", "none", "OTel exporter: none, stdout, otlp-grpc, otlp-http")
	otelEndpoint := flag.String("otel-endpoint", "", "OTLP endpoint (e.g. localhost:4317)")
	otelInsecure := flag.Bool("otel-insecure", false, "Disable TLS for OTLP connections")
	flag.Parse()

	cfg := config.Server{
		Addr:       *addr,
		HelperName: *helper,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownObs, err := otel.Setup(ctx, "telewire-server", version, *otelExporter, *otelEndpoint, *otelInsecure)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer shutdownObs(context.Background())

	log := events.NewEventLogger("server")
	events.SetGlobalEventLogger(log)

	acceptor, err := server.NewAcceptor(cfg.Addr, display.New(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("telewire server %s\n", version)
	fmt.Printf("Listening on %s\n", acceptor.Addr())
	fmt.Println("Commands: o=open helper, h=help, q=quit")

	// Command intake runs on its own goroutine so the operator stays
	// responsive while a session blocks on reads. Quit exits the
	// process directly, without waiting for an in-flight session.
	intake := command.NewIntake(os.Stdin, os.Stdout, nil, cfg.HelperName, log)
	go intake.Run()

	if err := acceptor.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
