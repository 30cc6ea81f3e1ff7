// Package config holds the fixed configuration surface shared by the
// producer and the server. Values are explicit and injected at
// construction; nothing here is ambient global state.
package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

// Defaults for the shared configuration surface.
const (
	DefaultAddr             = "127.0.0.1:8080"
	DefaultSampleInterval   = 1 * time.Second
	DefaultReconnectBackoff = 2 * time.Second
	DefaultHelperName       = "microsoft-edge"
)

// Producer configures the telemetry producer.
type Producer struct {
	// Addr is the server address to dial, host:port.
	Addr string
	// SampleInterval is the fixed delay between ticks.
	SampleInterval time.Duration
	// ReconnectBackoff is the sleep before the single re-dial attempt.
	ReconnectBackoff time.Duration
	// WithLoad additionally samples the 1-minute load average.
	WithLoad bool
}

// DefaultProducer returns producer defaults with env overrides applied
// (TELEWIRE_ADDR, TELEWIRE_SAMPLE_INTERVAL, TELEWIRE_RECONNECT_BACKOFF,
// TELEWIRE_WITH_LOAD).
func DefaultProducer() Producer {
	return Producer{
		Addr:             Env("TELEWIRE_ADDR", DefaultAddr),
		SampleInterval:   EnvDuration("TELEWIRE_SAMPLE_INTERVAL", DefaultSampleInterval),
		ReconnectBackoff: EnvDuration("TELEWIRE_RECONNECT_BACKOFF", DefaultReconnectBackoff),
		WithLoad:         EnvBool("TELEWIRE_WITH_LOAD", false),
	}
}

func (p Producer) Validate() error {
	if strings.TrimSpace(p.Addr) == "" {
		return errors.New("producer address is required")
	}
	if p.SampleInterval <= 0 {
		return errors.New("sample interval must be > 0")
	}
	if p.ReconnectBackoff < 0 {
		return errors.New("reconnect backoff must be >= 0")
	}
	return nil
}

// Server configures the connection acceptor and command intake.
type Server struct {
	// Addr is the listen address, host:port.
	Addr string
	// HelperName is the external application the open command launches.
	HelperName string
}

// DefaultServer returns server defaults with env overrides applied
// (TELEWIRE_ADDR, TELEWIRE_HELPER).
func DefaultServer() Server {
	return Server{
		Addr:       Env("TELEWIRE_ADDR", DefaultAddr),
		HelperName: Env("TELEWIRE_HELPER", DefaultHelperName),
	}
}

func (s Server) Validate() error {
	if strings.TrimSpace(s.Addr) == "" {
		return errors.New("server address is required")
	}
	return nil
}

// Env returns the trimmed value of key, or fallback when unset or empty.
func Env(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// EnvDuration parses key as a time.Duration, falling back on absence or
// parse failure.
func EnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// EnvBool parses key as a boolean, falling back on absence or an
// unrecognized value.
func EnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
