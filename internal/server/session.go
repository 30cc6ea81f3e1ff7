// Package server implements the telemetry consumer: a sequential
// connection acceptor and a per-connection session handler.
package server

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/rafaelqm/telewire/internal/events"
	"github.com/rafaelqm/telewire/internal/otel"
	"github.com/rafaelqm/telewire/internal/wire"
)

// Sink consumes decoded samples in stream order.
type Sink interface {
	Render(peer string, s wire.Sample)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(peer string, s wire.Sample)

func (f SinkFunc) Render(peer string, s wire.Sample) { f(peer, s) }

// Session owns one connection and its read buffer for the session's
// lifetime, decoding records and forwarding them to the sink.
type Session struct {
	conn    net.Conn
	peer    string
	reader  *wire.RecordReader
	sink    Sink
	log     *events.EventLogger
	metrics *otel.Metrics
	tracer  *otel.Tracer

	records int64
}

// NewSession wraps an accepted connection.
func NewSession(conn net.Conn, sink Sink, log *events.EventLogger) *Session {
	if log == nil {
		log = events.NoopEventLogger()
	}
	peer := "unknown"
	if addr := conn.RemoteAddr(); addr != nil {
		peer = addr.String()
	}
	return &Session{
		conn:    conn,
		peer:    peer,
		reader:  wire.NewRecordReader(conn),
		sink:    sink,
		log:     log,
		metrics: otel.GetGlobalMetrics(),
		tracer:  otel.GetGlobalTracer(),
	}
}

// Records returns the number of records decoded so far.
func (s *Session) Records() int64 {
	return s.records
}

// Run decodes records until the peer closes or an unrecoverable I/O
// error occurs. A malformed line is logged and skipped; it never ends
// the session. Reads carry no timeout, so a hung peer blocks here
// indefinitely.
func (s *Session) Run(ctx context.Context) {
	spanCtx, span := s.tracer.StartSessionSpan(ctx, s.peer)
	defer span.End()

	s.log.LogSessionStarted(s.peer)
	s.metrics.IncrementSessions(spanCtx)
	defer s.metrics.DecrementSessions(spanCtx)
	defer s.conn.Close()

	for {
		sample, err := s.reader.NextSample()
		if err != nil {
			var malformed *wire.MalformedRecordError
			if errors.As(err, &malformed) {
				s.log.LogMalformedRecord(s.peer, err)
				s.metrics.RecordMalformed(spanCtx)
				continue
			}
			if errors.Is(err, io.EOF) {
				s.log.LogSessionEnded(s.peer, "peer_closed", s.records)
				return
			}
			otel.RecordError(span, err, "read", false)
			s.log.LogSessionEnded(s.peer, "read_error", s.records)
			return
		}

		s.records++
		s.metrics.RecordReceived(spanCtx)
		s.sink.Render(s.peer, sample)
	}
}
