// Homecontrol Core - typed home-automation gateway
//
// This is the main entry point for the homecontrol core application. It
// serves Philips Hue bridge resources and stored room states through a REST
// and WebSocket API, decoding every payload through the typed mapping layer.
//
// Commands:
//   - serve (default): run the API server
//   - migrate up|down|status: manage the SQLite schema
//   - user add <username>: create an API account
//   - schemas: print the registered payload schemas as JSON
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on Ctrl+C or SIGTERM so every command shuts down gracefully.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the root command without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "homecontrol",
		Short: "Homecontrol core: typed Hue gateway and room states",
		Long: `Homecontrol core exposes Philips Hue bridges and stored room states
through a REST and WebSocket API. Payloads are decoded against declared
schemas and collections can be filtered with ?filters={"field[op]": value}.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", getConfigPath(),
		"path to the YAML configuration file (env HOMECONTROL_CONFIG)")

	root.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
		newUserCmd(&configPath),
		newSchemasCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "homecontrol %s\n", version)
			fmt.Fprintf(out, "commit:     %s\n", commit)
			fmt.Fprintf(out, "built:      %s\n", date)
		},
	}
}

// getConfigPath returns the configuration file path.
// Uses HOMECONTROL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOMECONTROL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
