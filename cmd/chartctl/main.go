// Package main provides chartctl, an offline tool for inspecting tabular
// files, rendering charts from them and converting between formats.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/chartbind/internal/logging"
)

// defaultMaxBytes bounds input files read by every command.
const defaultMaxBytes = 10 << 20

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "chartctl",
		Short: "Inspect, chart and convert tab-delimited and xlsx tables",
		Long: `chartctl reads a table (tab-delimited text or .xlsx), infers the
category axis and data series the way the web editor does, and renders
or converts it without a running server.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().Int64("max-bytes", defaultMaxBytes, "Maximum input size in bytes")

	root.AddCommand(newInspectCmd(), newRenderCmd(), newConvertCmd(), newKindsCmd())
	return root
}
