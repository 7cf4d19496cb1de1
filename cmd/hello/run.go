package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/ygrebnov/workerpool"
	"github.com/ygrebnov/workerpool/internal/acceptor"
	"github.com/ygrebnov/workerpool/internal/admin"
	"github.com/ygrebnov/workerpool/internal/config"
	"github.com/ygrebnov/workerpool/internal/logging"
	"github.com/ygrebnov/workerpool/metrics"
)

type handlerFactory func(logger *slog.Logger) acceptor.ConnHandler

// run sets up logging and the listener, then hands over to serve until a
// signal arrives.
func run(ctx context.Context, cfg *config.Config, logOut io.Writer, newHandler handlerFactory) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return serve(ctx, cfg, ln, logger, newHandler(logger))
}

// serve runs the pool, the optional admin server and the accept loop on ln.
// It returns once ctx is done or the connection limit is reached and the
// pool has drained or ShutdownTimeout has passed.
func serve(ctx context.Context, cfg *config.Config, ln net.Listener, logger *slog.Logger, handler acceptor.ConnHandler) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pool, err := workerpool.New(cfg.PoolSize,
		workerpool.WithName("hello"),
		workerpool.WithLogger(logger),
		workerpool.WithMetrics(metrics.NewPrometheusProvider(registry)),
	)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("pool: %w", err)
	}

	var adminSrv *http.Server
	if cfg.AdminAddr != "" {
		adminSrv = &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           admin.Handler(pool, registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("admin server started", "addr", cfg.AdminAddr)
			if err := adminSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logger.Error("admin server failed", "error", err)
			}
		}()
	}

	var limiter *rate.Limiter
	if cfg.AcceptRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), cfg.AcceptBurst)
	}

	acc := acceptor.New(pool, handler, acceptor.Options{
		MaxConns: cfg.MaxConns,
		Limiter:  limiter,
		Logger:   logger,
	})
	serveErr := acc.Serve(ctx, ln)

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// A timed-out drain leaves workers running; the process is about to exit.
	if err := pool.CloseContext(shutdownCtx); err != nil {
		serveErr = errors.Join(serveErr, fmt.Errorf("drain pool: %w", err))
	}
	if adminSrv != nil {
		if err := adminSrv.Shutdown(shutdownCtx); err != nil {
			serveErr = errors.Join(serveErr, fmt.Errorf("admin shutdown: %w", err))
		}
	}
	return serveErr
}
