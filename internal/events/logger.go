// Package events provides structured logging for key events in the
// telewire pipeline. Every connection state transition, malformed record,
// and orderly disconnect is logged; delivery interruption is never silent.
package events

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// EventLogger emits JSON-structured pipeline events.
type EventLogger struct {
	logger *slog.Logger
	role   string
}

// NewEventLogger creates an EventLogger writing JSON to stderr. role is
// attached to every event ("producer" or "server").
func NewEventLogger(role string) *EventLogger {
	return NewEventLoggerWithWriter(role, os.Stderr)
}

// NewEventLoggerWithWriter creates an EventLogger with a custom writer.
// Useful for testing or redirecting output.
func NewEventLoggerWithWriter(role string, w io.Writer) *EventLogger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return &EventLogger{
		logger: slog.New(handler).With("role", role),
		role:   role,
	}
}

// LogConnected logs a successful dial.
// event: "connected"
func (el *EventLogger) LogConnected(addr string) {
	el.logger.Info("connected", "addr", addr)
}

// LogReconnecting logs entry into the reconnect state after a failed
// send or flush.
// event: "reconnecting"
func (el *EventLogger) LogReconnecting(addr string, reason error, backoffMs int64) {
	el.logger.Warn("reconnecting",
		"addr", addr,
		"reason", reason.Error(),
		"backoff_ms", backoffMs,
	)
}

// LogReconnected logs a successful re-dial after backoff.
// event: "reconnected"
func (el *EventLogger) LogReconnected(addr string) {
	el.logger.Info("reconnected", "addr", addr)
}

// LogReconnectFailed logs the fatal failure of the single re-dial
// attempt. The producer exits after this event.
// event: "reconnect_failed"
func (el *EventLogger) LogReconnectFailed(addr string, err error) {
	el.logger.Error("reconnect_failed",
		"addr", addr,
		"error", err.Error(),
	)
}

// LogSessionStarted logs an accepted connection.
// event: "session_started"
func (el *EventLogger) LogSessionStarted(peer string) {
	el.logger.Info("session_started", "peer", peer)
}

// LogSessionEnded logs the end of a session.
// event: "session_ended"
// reason is "peer_closed" for a clean close, otherwise an error class.
func (el *EventLogger) LogSessionEnded(peer, reason string, records int64) {
	el.logger.Info("session_ended",
		"peer", peer,
		"reason", reason,
		"records", records,
	)
}

// LogMalformedRecord logs a line that failed to decode. The session
// continues with the next line.
// event: "malformed_record"
func (el *EventLogger) LogMalformedRecord(peer string, err error) {
	el.logger.Warn("malformed_record",
		"peer", peer,
		"error", err.Error(),
	)
}

// LogAcceptError logs a failure accepting one connection; the accept
// loop continues.
// event: "accept_error"
func (el *EventLogger) LogAcceptError(err error) {
	el.logger.Error("accept_error", "error", err.Error())
}

// LogCommand logs execution of a recognized operator command.
// event: "command"
func (el *EventLogger) LogCommand(name string) {
	el.logger.Info("command", "name", name)
}

// LogCommandIgnored logs unrecognized operator input at debug level
// only; such input produces no action and no user-facing error.
// event: "command_ignored"
func (el *EventLogger) LogCommandIgnored(input string) {
	el.logger.Debug("command_ignored", "input", input)
}

// LogLaunchError logs a failed external helper launch.
// event: "launch_error"
func (el *EventLogger) LogLaunchError(name string, err error) {
	el.logger.Error("launch_error", "name", name, "error", err.Error())
}

// Global logger management
var (
	globalLogger *EventLogger
	globalMu     sync.RWMutex

	noopLogger *EventLogger
	noopOnce   sync.Once
)

// SetGlobalEventLogger sets the global event logger instance.
func SetGlobalEventLogger(l *EventLogger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// GetGlobalEventLogger returns the global event logger instance.
// If no logger is set, returns a shared no-op logger.
func GetGlobalEventLogger() *EventLogger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger != nil {
		return globalLogger
	}
	return NoopEventLogger()
}

// NoopEventLogger returns an event logger that discards all events.
// Useful for testing or when event logging is disabled.
func NoopEventLogger() *EventLogger {
	noopOnce.Do(func() {
		handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
		noopLogger = &EventLogger{logger: slog.New(handler)}
	})
	return noopLogger
}
