package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "iridium",
	Short: "A forex backtesting engine",
	Long: `Iridium simulates forex trading strategies against historical price data.

It provides tools for:
  - Running minute-resolution backtests over a local price database
  - Fetching historical candles from OANDA
  - Importing CSV exports and Dukascopy tick archives
  - Inspecting the forex trading-session calendar`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
