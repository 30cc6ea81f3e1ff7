package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rafaelqm/telewire/internal/events"
)

// Acceptor binds a listening socket and runs one session at a time to
// completion. Exactly one producer is expected, so there is no per-
// session goroutine; operator responsiveness comes from the command
// intake running on its own goroutine.
type Acceptor struct {
	ln   net.Listener
	sink Sink
	log  *events.EventLogger
}

// NewAcceptor binds addr. A bind failure is fatal at startup and is
// returned to the caller.
func NewAcceptor(addr string, sink Sink, log *events.EventLogger) (*Acceptor, error) {
	if log == nil {
		log = events.NoopEventLogger()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	return &Acceptor{ln: ln, sink: sink, log: log}, nil
}

// Addr returns the bound listen address.
func (a *Acceptor) Addr() net.Addr {
	return a.ln.Addr()
}

// Close stops the listener, unblocking Run.
func (a *Acceptor) Close() error {
	return a.ln.Close()
}

// Run accepts connections in a loop until the listener is closed or ctx
// is cancelled. A failure accepting one connection is logged and the
// loop continues; each accepted session blocks the loop until it ends.
func (a *Acceptor) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		a.ln.Close()
	}()

	for {
		conn, err := a.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			a.log.LogAcceptError(err)
			continue
		}

		NewSession(conn, a.sink, a.log).Run(ctx)
	}
}
