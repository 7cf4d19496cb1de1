package workerpool

import (
	"log/slog"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/workerpool/metrics"
)

// config holds Pool configuration.
type config struct {
	// Name is attached to every log record as the "pool" attribute.
	// Default: "workerpool".
	Name string

	// Logger receives worker lifecycle and job failure records.
	// Default: a logger that discards everything.
	Logger *slog.Logger

	// Metrics constructs the pool instruments.
	// Default: metrics.NoopProvider.
	Metrics metrics.Provider

	// PanicHandler, if set, is called from the worker goroutine after a job panicked.
	// The error wraps ErrJobPanicked. The worker keeps running afterwards.
	PanicHandler func(workerID int, err error)
}

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		Name:         Namespace,
		Logger:       slog.New(slog.DiscardHandler),
		Metrics:      metrics.NewNoopProvider(),
		PanicHandler: nil,
	}
}

// validateConfig rejects configs with missing collaborators.
func validateConfig(cfg *config) error {
	switch {
	case cfg.Logger == nil:
		return errorc.With(ErrInvalidConfig, errorc.String("", "logger must not be nil"))
	case cfg.Metrics == nil:
		return errorc.With(ErrInvalidConfig, errorc.String("", "metrics provider must not be nil"))
	}
	return nil
}

// Option configures a Pool. Use New(size, opts...) to construct a Pool via options.
type Option func(*config) error

// WithName sets the pool name used in log records.
func WithName(name string) Option {
	return func(cfg *config) error {
		if name == "" {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithName requires a non-empty name"))
		}
		cfg.Name = name
		return nil
	}
}

// WithLogger sets the logger for worker lifecycle and job failure records.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil logger"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics sets the metrics provider used to create pool instruments.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}

// WithPanicHandler registers a callback for jobs that panicked.
func WithPanicHandler(fn func(workerID int, err error)) Option {
	return func(cfg *config) error { cfg.PanicHandler = fn; return nil }
}
