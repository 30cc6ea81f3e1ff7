package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestGetGlobalEventLoggerReturnsSingletonNoopWhenUnset(t *testing.T) {
	SetGlobalEventLogger(nil)

	a := GetGlobalEventLogger()
	b := GetGlobalEventLogger()

	if a == nil || b == nil {
		t.Fatal("expected non-nil noop logger")
	}
	if a != b {
		t.Fatal("expected singleton noop logger instance")
	}
}

func TestEventsCarryRoleAndAttributes(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLoggerWithWriter("producer", &buf)

	el.LogReconnecting("127.0.0.1:8080", errors.New("broken pipe"), 2000)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("event is not valid JSON: %v", err)
	}

	if entry["msg"] != "reconnecting" {
		t.Errorf("expected msg 'reconnecting', got %v", entry["msg"])
	}
	if entry["role"] != "producer" {
		t.Errorf("expected role 'producer', got %v", entry["role"])
	}
	if entry["addr"] != "127.0.0.1:8080" {
		t.Errorf("expected addr attribute, got %v", entry["addr"])
	}
	if entry["backoff_ms"] != float64(2000) {
		t.Errorf("expected backoff_ms 2000, got %v", entry["backoff_ms"])
	}
}

func TestSessionEndedEvent(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLoggerWithWriter("server", &buf)

	el.LogSessionEnded("10.0.0.5:51234", "peer_closed", 17)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("event is not valid JSON: %v", err)
	}
	if entry["reason"] != "peer_closed" {
		t.Errorf("expected reason 'peer_closed', got %v", entry["reason"])
	}
	if entry["records"] != float64(17) {
		t.Errorf("expected records 17, got %v", entry["records"])
	}
}
