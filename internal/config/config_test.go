package config

import (
	"testing"
	"time"
)

func TestDefaultProducer(t *testing.T) {
	t.Setenv("TELEWIRE_ADDR", "")
	t.Setenv("TELEWIRE_SAMPLE_INTERVAL", "")
	t.Setenv("TELEWIRE_RECONNECT_BACKOFF", "")

	p := DefaultProducer()
	if p.Addr != DefaultAddr {
		t.Errorf("expected default addr %q, got %q", DefaultAddr, p.Addr)
	}
	if p.SampleInterval != DefaultSampleInterval {
		t.Errorf("expected default interval %v, got %v", DefaultSampleInterval, p.SampleInterval)
	}
	if p.ReconnectBackoff != DefaultReconnectBackoff {
		t.Errorf("expected default backoff %v, got %v", DefaultReconnectBackoff, p.ReconnectBackoff)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEWIRE_ADDR", "10.1.2.3:9000")
	t.Setenv("TELEWIRE_SAMPLE_INTERVAL", "250ms")
	t.Setenv("TELEWIRE_RECONNECT_BACKOFF", "5s")

	p := DefaultProducer()
	if p.Addr != "10.1.2.3:9000" {
		t.Errorf("addr override ignored: %q", p.Addr)
	}
	if p.SampleInterval != 250*time.Millisecond {
		t.Errorf("interval override ignored: %v", p.SampleInterval)
	}
	if p.ReconnectBackoff != 5*time.Second {
		t.Errorf("backoff override ignored: %v", p.ReconnectBackoff)
	}
}

func TestEnvDurationFallsBackOnGarbage(t *testing.T) {
	t.Setenv("TELEWIRE_SAMPLE_INTERVAL", "soon")
	if got := EnvDuration("TELEWIRE_SAMPLE_INTERVAL", time.Second); got != time.Second {
		t.Errorf("expected fallback, got %v", got)
	}
}

func TestEnvBool(t *testing.T) {
	cases := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"1", false, true},
		{"yes", false, true},
		{"off", true, false},
		{"", true, true},
		{"maybe", false, false},
	}
	for _, tc := range cases {
		t.Setenv("TELEWIRE_TEST_BOOL", tc.value)
		if got := EnvBool("TELEWIRE_TEST_BOOL", tc.fallback); got != tc.want {
			t.Errorf("EnvBool(%q, %v) = %v, want %v", tc.value, tc.fallback, got, tc.want)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	p := Producer{Addr: " ", SampleInterval: time.Second}
	if err := p.Validate(); err == nil {
		t.Error("expected error for blank addr")
	}

	p = Producer{Addr: "x:1", SampleInterval: 0}
	if err := p.Validate(); err == nil {
		t.Error("expected error for zero interval")
	}

	s := Server{Addr: ""}
	if err := s.Validate(); err == nil {
		t.Error("expected error for blank server addr")
	}
}
