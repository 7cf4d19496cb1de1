package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ygrebnov/workerpool/internal/acceptor"
	"github.com/ygrebnov/workerpool/internal/config"
	"github.com/ygrebnov/workerpool/internal/hello"
	"github.com/ygrebnov/workerpool/internal/relay"
)

var errNoUpstream = errors.New("relay: upstream address is required (--upstream or RELAY_UPSTREAM)")

// ── serve ─────────────────────────────────────────────────────────────────────

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve hello.html and 404.html over raw TCP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, os.Stderr, func(logger *slog.Logger) acceptor.ConnHandler {
				return hello.New(hello.Pages(cfg.DocRoot), cfg.SleepDelay, logger)
			})
		},
	}
}

// ── relay ─────────────────────────────────────────────────────────────────────

func relayCmd(configPath *string) *cobra.Command {
	var upstream string

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Forward every accepted connection to an upstream address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if upstream != "" {
				cfg.RelayUpstream = upstream
			}
			if cfg.RelayUpstream == "" {
				return errNoUpstream
			}
			return run(cmd.Context(), cfg, os.Stderr, func(logger *slog.Logger) acceptor.ConnHandler {
				return relay.New(cfg.RelayUpstream, cfg.DialTimeout, logger)
			})
		},
	}
	cmd.Flags().StringVar(&upstream, "upstream", "", "upstream host:port (overrides RELAY_UPSTREAM)")
	return cmd
}
