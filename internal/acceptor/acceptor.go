// Package acceptor turns accepted network connections into pool jobs.
package acceptor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ygrebnov/workerpool"
)

// Submitter accepts jobs for background execution. *workerpool.Pool satisfies it.
type Submitter interface {
	Submit(workerpool.Job) error
}

// ConnHandler serves one connection to completion. The acceptor closes the
// connection after ServeConn returns.
type ConnHandler interface {
	ServeConn(ctx context.Context, conn net.Conn)
}

// ConnHandlerFunc adapts a function to ConnHandler.
type ConnHandlerFunc func(ctx context.Context, conn net.Conn)

func (f ConnHandlerFunc) ServeConn(ctx context.Context, conn net.Conn) { f(ctx, conn) }

type connIDKey struct{}

// ConnID returns the id the acceptor assigned to the connection served under ctx.
func ConnID(ctx context.Context) string {
	id, _ := ctx.Value(connIDKey{}).(string)
	return id
}

// Options tune the accept loop.
type Options struct {
	// MaxConns stops the loop after this many accepted connections; 0 means unlimited.
	MaxConns int
	// Limiter throttles accepts; nil means unlimited.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// Acceptor submits every accepted connection to a pool as one job.
type Acceptor struct {
	pool    Submitter
	handler ConnHandler
	opts    Options
	logger  *slog.Logger
}

// New returns an Acceptor dispatching to pool and handler.
func New(pool Submitter, handler ConnHandler, opts Options) *Acceptor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Acceptor{pool: pool, handler: handler, opts: opts, logger: logger}
}

// Serve accepts connections from ln until ctx is done, MaxConns is reached, or
// the pool rejects a job. It closes ln before returning. Connections already
// handed to the pool keep running; waiting for them is the pool owner's job.
//
// Serve returns nil on ctx cancellation or when MaxConns is reached.
func (a *Acceptor) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer ln.Close()

	a.logger.Info("accepting connections", "addr", ln.Addr().String(), "max_conns", a.opts.MaxConns)

	for accepted := 0; a.opts.MaxConns == 0 || accepted < a.opts.MaxConns; accepted++ {
		if a.opts.Limiter != nil {
			if err := a.opts.Limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("acceptor: accept: %w", err)
		}

		if err := a.dispatch(ctx, conn); err != nil {
			return err
		}
	}

	a.logger.Info("connection limit reached; shutting down", "max_conns", a.opts.MaxConns)
	return nil
}

func (a *Acceptor) dispatch(ctx context.Context, conn net.Conn) error {
	id := uuid.NewString()
	connCtx := context.WithValue(ctx, connIDKey{}, id)
	a.logger.Debug("connection accepted", "conn_id", id, "remote", conn.RemoteAddr().String())

	err := a.pool.Submit(func() {
		defer conn.Close()
		a.handler.ServeConn(connCtx, conn)
		a.logger.Debug("connection done", "conn_id", id)
	})
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("acceptor: submit connection %s: %w", id, err)
	}
	return nil
}
