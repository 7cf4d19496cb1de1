// Package config loads settings for the hello binary.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional YAML file, then environment variables (parsed with caarlos0/env/v11).
// Call [Load] once at startup and pass the result to the subcommand.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("config: invalid value")

// Config holds all process settings.
type Config struct {
	// ── Listeners ────────────────────────────────────────────────────────────
	ListenAddr string `yaml:"listen_addr" env:"LISTEN_ADDR"`
	// AdminAddr serves /healthz, /metrics and /stats; empty disables it.
	AdminAddr string `yaml:"admin_addr" env:"ADMIN_ADDR"`

	// ── Pool ─────────────────────────────────────────────────────────────────
	PoolSize        uint          `yaml:"pool_size"        env:"POOL_SIZE"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`

	// ── Accept loop ──────────────────────────────────────────────────────────
	// MaxConns stops accepting after this many connections; 0 means unlimited.
	MaxConns int `yaml:"max_conns" env:"MAX_CONNS"`
	// AcceptRate limits accepted connections per second; 0 means unlimited.
	AcceptRate  float64 `yaml:"accept_rate"  env:"ACCEPT_RATE"`
	AcceptBurst int     `yaml:"accept_burst" env:"ACCEPT_BURST"`

	// ── File server ──────────────────────────────────────────────────────────
	// DocRoot holds hello.html and 404.html; empty serves the embedded pages.
	DocRoot    string        `yaml:"doc_root"    env:"DOC_ROOT"`
	SleepDelay time.Duration `yaml:"sleep_delay" env:"SLEEP_DELAY"`

	// ── Relay ────────────────────────────────────────────────────────────────
	RelayUpstream string        `yaml:"relay_upstream" env:"RELAY_UPSTREAM"`
	DialTimeout   time.Duration `yaml:"dial_timeout"   env:"DIAL_TIMEOUT"`

	// ── Logging ──────────────────────────────────────────────────────────────
	LogLevel  string `yaml:"log_level"  env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ListenAddr:      "127.0.0.1:7878",
		AdminAddr:       "",
		PoolSize:        4,
		ShutdownTimeout: 30 * time.Second,
		MaxConns:        0,
		AcceptRate:      0,
		AcceptBurst:     1,
		DocRoot:         "",
		SleepDelay:      5 * time.Second,
		RelayUpstream:   "",
		DialTimeout:     5 * time.Second,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load returns defaults overlaid with the YAML file at path (skipped when path
// is empty) and then with environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open file: %w", err)
		}
		defer f.Close()

		if err := decodeYAML(f, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeYAML overlays r onto cfg. Unknown keys are rejected.
func decodeYAML(r io.Reader, cfg *Config) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("config: read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config: parse YAML: %w", err)
	}
	return nil
}

// Validate checks value ranges. Upstream presence is checked by the relay command.
func (c *Config) Validate() error {
	switch {
	case c.ListenAddr == "":
		return errorc.With(ErrInvalid, errorc.String("listen_addr", "must not be empty"))
	case c.PoolSize == 0:
		return errorc.With(ErrInvalid, errorc.String("pool_size", "must be greater than zero"))
	case c.MaxConns < 0:
		return errorc.With(ErrInvalid, errorc.String("max_conns", "must be non-negative"))
	case c.AcceptRate < 0:
		return errorc.With(ErrInvalid, errorc.String("accept_rate", "must be non-negative"))
	case c.AcceptRate > 0 && c.AcceptBurst < 1:
		return errorc.With(ErrInvalid, errorc.String("accept_burst", "must be at least 1 when accept_rate is set"))
	case c.SleepDelay < 0:
		return errorc.With(ErrInvalid, errorc.String("sleep_delay", "must be non-negative"))
	case c.DialTimeout <= 0:
		return errorc.With(ErrInvalid, errorc.String("dial_timeout", "must be positive"))
	case c.ShutdownTimeout <= 0:
		return errorc.With(ErrInvalid, errorc.String("shutdown_timeout", "must be positive"))
	}
	return nil
}
