// Command pathtracer is the operator CLI over the same core the API
// server wires: one subcommand per operation, grounded on
// e2e/internal/devnet/cmd's one-struct-per-subcommand layout and
// controlplane/internet-latency-collector/cmd/collector/main.go's
// persistent-flag/logger conventions.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	// set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	inventoryPath string
	collectedRoot string
	verbose       bool
	jsonOutput    bool
)

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "pathtracer",
		Short: "Walk route tables hop by hop and explain why a prefix routes the way it does",
	}

	rootCmd.PersistentFlags().StringVar(&inventoryPath, "inventory", "inventory.yaml", "path to the device inventory YAML")
	rootCmd.PersistentFlags().StringVar(&collectedRoot, "collected-root", "./collected", "root of the on-disk collected-data cache")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit JSON instead of a human summary")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pathtracer %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}

	rootCmd.AddCommand(
		versionCmd,
		NewTraceCmd().Command(),
		NewCompareCmd().Command(),
		NewSimulateFailureCmd().Command(),
		NewBlastRadiusCmd().Command(),
		NewOriginCmd().Command(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
