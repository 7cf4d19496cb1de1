// Package relay bridges accepted client connections to a fixed upstream.
package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/ygrebnov/workerpool/internal/acceptor"
)

// Relay copies bytes between a client and Upstream until both directions end.
type Relay struct {
	upstream string
	dialer   net.Dialer
	logger   *slog.Logger
}

var _ acceptor.ConnHandler = (*Relay)(nil)

// New returns a Relay dialing upstream with the given timeout.
func New(upstream string, dialTimeout time.Duration, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Relay{
		upstream: upstream,
		dialer:   net.Dialer{Timeout: dialTimeout},
		logger:   logger,
	}
}

type closeWriter interface {
	CloseWrite() error
}

// ServeConn dials the upstream and forwards in both directions. When one side
// finishes sending, the write half of the other side is closed so it sees EOF.
// Cancelling ctx tears down both connections.
func (r *Relay) ServeConn(ctx context.Context, client net.Conn) {
	id := acceptor.ConnID(ctx)

	upstream, err := r.dialer.DialContext(ctx, "tcp", r.upstream)
	if err != nil {
		r.logger.Warn("dial upstream", "conn_id", id, "upstream", r.upstream, "error", err)
		return
	}
	defer upstream.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = client.Close()
		_ = upstream.Close()
	})
	defer stop()

	var (
		wg      sync.WaitGroup
		up, dn  int64
		upErr   error
		downErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		up, upErr = pipe(upstream, client)
	}()
	go func() {
		defer wg.Done()
		dn, downErr = pipe(client, upstream)
	}()
	wg.Wait()

	if err := errors.Join(upErr, downErr); err != nil && ctx.Err() == nil {
		r.logger.Debug("relay ended with error", "conn_id", id, "error", err)
	}
	r.logger.Debug("relay done", "conn_id", id, "bytes_up", up, "bytes_down", dn)
}

func pipe(dst, src net.Conn) (int64, error) {
	n, err := io.Copy(dst, src)
	if cw, ok := dst.(closeWriter); ok {
		_ = cw.CloseWrite()
	} else {
		_ = dst.Close()
	}
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return n, err
}
