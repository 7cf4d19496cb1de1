// Command hello serves raw TCP connections from a fixed-size worker pool.
//
// Subcommands:
//
//	serve   answers a tiny HTTP/1.1 subset with static pages
//	relay   forwards every connection to a fixed upstream
package main

import (
	"log/slog"
	"os"

	// Sets GOMEMLIMIT from the cgroup memory limit when running in a container.
	_ "github.com/KimMachineGun/automemlimit"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "hello",
		Short: "Fixed-size worker pool connection server",
		// Errors are reported once, through slog.
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		serveCmd(&configPath),
		relayCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
