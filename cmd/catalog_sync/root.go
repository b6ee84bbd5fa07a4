package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"

	// Global flags
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "catalog_sync",
	Short: "Catalog mirror and transaction service",
	Long: `catalog_sync keeps a local mirror of an on-ledger catalog (courses,
products or tournaments) and submits create and purchase transactions
on behalf of the configured signer.

Configuration is read from the environment and an optional .env file.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text); defaults to json in production")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(purchaseCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("catalog_sync %s\n", Version)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		fmt.Printf("  Built:      %s\n", BuildTime)
	},
}

// createLogger builds the process logger from the global flags.
func createLogger(isProduction bool, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	format := strings.ToLower(logFormat)
	if format == "" {
		format = "text"
		if isProduction {
			format = "json"
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// stderrLogger is used by the one-shot commands so stdout stays machine readable.
func stderrLogger(isProduction bool) *slog.Logger {
	return createLogger(isProduction, os.Stderr)
}
