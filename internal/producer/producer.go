// Package producer implements the telemetry client: one connection,
// fixed-interval sampling, and the reconnect state machine.
package producer

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/rafaelqm/telewire/internal/config"
	"github.com/rafaelqm/telewire/internal/events"
	"github.com/rafaelqm/telewire/internal/otel"
	"github.com/rafaelqm/telewire/internal/sampler"
	"github.com/rafaelqm/telewire/internal/wire"
)

// State is the producer's connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnected
	StateReconnecting
	StateFatal
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Dialer establishes one connection to the server. Injected so tests can
// drive the state machine without a network.
type Dialer interface {
	Dial() (net.Conn, error)
}

type netDialer struct {
	addr string
}

func (d netDialer) Dial() (net.Conn, error) {
	return net.Dial("tcp", d.addr)
}

// NewNetDialer returns a Dialer for the given TCP address.
func NewNetDialer(addr string) Dialer {
	return netDialer{addr: addr}
}

// Producer owns one connection at a time, exclusively. On reconnect the
// old connection is discarded wholesale, never reused.
type Producer struct {
	cfg      config.Producer
	registry *sampler.Registry
	dialer   Dialer
	log      *events.EventLogger
	metrics  *otel.Metrics
	tracer   *otel.Tracer

	conn  net.Conn
	w     *bufio.Writer
	state atomic.Int32
	sent  atomic.Int64
}

// New creates a producer. A nil dialer dials cfg.Addr over TCP; a nil
// logger discards events.
func New(cfg config.Producer, registry *sampler.Registry, dialer Dialer, log *events.EventLogger) *Producer {
	if dialer == nil {
		dialer = NewNetDialer(cfg.Addr)
	}
	if log == nil {
		log = events.NoopEventLogger()
	}
	return &Producer{
		cfg:      cfg,
		registry: registry,
		dialer:   dialer,
		log:      log,
		metrics:  otel.GetGlobalMetrics(),
		tracer:   otel.GetGlobalTracer(),
	}
}

// State returns the current connection state.
func (p *Producer) State() State {
	return State(p.state.Load())
}

// Sent returns the number of records delivered so far.
func (p *Producer) Sent() int64 {
	return p.sent.Load()
}

func (p *Producer) setState(s State) {
	p.state.Store(int32(s))
	p.metrics.SetProducerState(int(s))
}

// Run dials the server and streams one record per tick until ctx is
// cancelled or the state machine goes fatal. The returned error is nil
// on cancellation and non-nil only for a startup dial failure, an
// encode precondition violation, or a failed re-dial.
func (p *Producer) Run(ctx context.Context) error {
	conn, err := p.dialer.Dial()
	if err != nil {
		return fmt.Errorf("dial %s: %w", p.cfg.Addr, err)
	}
	p.adopt(conn)
	p.setState(StateConnected)
	p.log.LogConnected(p.cfg.Addr)

	defer func() {
		if p.conn != nil {
			p.conn.Close()
		}
	}()

	for {
		start := time.Now()
		sample := p.registry.Collect()

		data, err := wire.Encode(sample)
		if err != nil {
			// Non-finite values are a programmer error in a sampler
			// func; they must not reach the wire.
			p.setState(StateFatal)
			return err
		}

		sendErr := p.send(data)
		p.metrics.RecordTickLatency(ctx, float64(time.Since(start).Microseconds())/1000, sendErr == nil)

		if sendErr != nil {
			if err := p.reconnect(ctx, sendErr); err != nil {
				return err
			}
		} else {
			p.sent.Add(1)
			p.metrics.RecordSent(ctx)
		}

		// Fixed-delay scheduling; drift against the interval is accepted.
		if !sleep(ctx, p.cfg.SampleInterval) {
			return nil
		}
	}
}

// send writes one record and flushes it. The flush is what turns
// "buffered" into "delivered to the kernel"; a record is only counted
// as sent after it succeeds.
func (p *Producer) send(record []byte) error {
	if _, err := p.w.Write(record); err != nil {
		return err
	}
	return p.w.Flush()
}

// reconnect runs one reconnect event: fixed backoff, then exactly one
// re-dial. There is no retry loop here; the next attempt only happens
// when the next send fails. The in-flight record may be duplicated or
// dropped across the transition.
func (p *Producer) reconnect(ctx context.Context, cause error) error {
	p.setState(StateReconnecting)
	p.log.LogReconnecting(p.cfg.Addr, cause, p.cfg.ReconnectBackoff.Milliseconds())

	spanCtx, span := p.tracer.StartReconnectSpan(ctx, p.cfg.Addr)
	defer span.End()

	if !sleep(ctx, p.cfg.ReconnectBackoff) {
		return nil
	}

	conn, err := p.dialer.Dial()
	if err != nil {
		p.setState(StateFatal)
		p.log.LogReconnectFailed(p.cfg.Addr, err)
		p.metrics.RecordReconnect(spanCtx, "fatal")
		otel.RecordError(span, err, "redial", false)
		return fmt.Errorf("reconnect to %s: %w", p.cfg.Addr, err)
	}

	p.adopt(conn)
	p.setState(StateConnected)
	p.log.LogReconnected(p.cfg.Addr)
	p.metrics.RecordReconnect(spanCtx, "recovered")
	return nil
}

// adopt replaces the owned connection, closing and discarding any
// previous one.
func (p *Producer) adopt(conn net.Conn) {
	if p.conn != nil {
		p.conn.Close()
	}
	p.conn = conn
	p.w = bufio.NewWriter(conn)
}

// sleep waits for d or until ctx is cancelled; false means cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
