package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/history"
	"github.com/shine15/iridium/ingest"
	"github.com/shine15/iridium/market"
)

var (
	importInstrument string
	importFreq       string
	importDBPath     string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import price data into the price database",
}

var importCSVCmd = &cobra.Command{
	Use:   "csv <file>",
	Short: "Import an OHLCV CSV export",
	Long: `Import rows of time,open,high,low,close,volume into the price database.
UTF-16 exports (as produced by MT4/MT5) are detected and decoded.

Example:
  iridium import csv eurusd_m1.csv -i EUR_USD -f M1 -d prices.db`,
	Args: cobra.ExactArgs(1),
	RunE: runImportCSV,
}

var (
	dukasFrom string
	dukasTo   string
)

var importDukasCmd = &cobra.Command{
	Use:   "dukas",
	Short: "Import Dukascopy tick archives as minute bars",
	Long: `Import downloads hourly .bi5 tick archives from the Dukascopy datafeed,
decodes them and writes aggregated mid-price minute bars.

Example:
  iridium import dukas -i EUR_USD --from 2019-01-08T00 --to 2019-01-09T00 -d prices.db`,
	RunE: runImportDukas,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importCSVCmd, importDukasCmd)

	importCmd.PersistentFlags().StringVarP(&importInstrument, "instrument", "i", "", "instrument, e.g. EUR_USD (required)")
	importCmd.PersistentFlags().StringVarP(&importDBPath, "db", "d", "./prices.db", "path to SQLite price database")
	importCmd.MarkPersistentFlagRequired("instrument")

	importCSVCmd.Flags().StringVarP(&importFreq, "frequency", "f", "M1", "bar frequency of the file (M1..H12, D, W)")

	importDukasCmd.Flags().StringVar(&dukasFrom, "from", "", "start hour (UTC), YYYY-MM-DDTHH (required)")
	importDukasCmd.Flags().StringVar(&dukasTo, "to", "", "end hour (UTC), exclusive (required)")
	importDukasCmd.MarkFlagRequired("from")
	importDukasCmd.MarkFlagRequired("to")
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	inst, err := market.ParseInstrument(importInstrument)
	if err != nil {
		return err
	}
	freq, err := calendar.ParseFrequency(importFreq)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	bars, err := ingest.ReadCSV(f)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("no bars in %s", args[0])
	}

	store, err := history.OpenSQLite(importDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if err := store.WriteBars(ctx, inst.Name, freq, bars); err != nil {
		return err
	}
	cmd.Printf("wrote %d %s bars for %s\n", len(bars), freq, inst.Name)
	return nil
}

func runImportDukas(cmd *cobra.Command, args []string) error {
	inst, err := market.ParseInstrument(importInstrument)
	if err != nil {
		return err
	}
	from, err := time.ParseInLocation("2006-01-02T15", dukasFrom, time.UTC)
	if err != nil {
		return fmt.Errorf("bad --from: %w", err)
	}
	to, err := time.ParseInLocation("2006-01-02T15", dukasTo, time.UTC)
	if err != nil {
		return fmt.Errorf("bad --to: %w", err)
	}
	if !to.After(from) {
		return fmt.Errorf("--to must be after --from")
	}

	store, err := history.OpenSQLite(importDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	d := &ingest.Dukas{}
	if inst.Quote == "JPY" {
		d.PointSize = 1e-3
	}
	symbol := strings.ReplaceAll(inst.Name, "_", "")

	ctx := cmd.Context()
	total := 0
	for hour := from; hour.Before(to); hour = hour.Add(time.Hour) {
		ticks, err := d.FetchHour(ctx, symbol, hour)
		if err != nil {
			return err
		}
		if len(ticks) == 0 {
			slog.Debug("no archive", "hour", hour)
			continue
		}
		bars := ingest.MinuteBars(ticks)
		if err := store.WriteBars(ctx, inst.Name, calendar.M1, bars); err != nil {
			return err
		}
		total += len(bars)
		slog.Info("imported hour", "hour", hour, "ticks", len(ticks), "bars", len(bars))
	}
	cmd.Printf("wrote %d M1 bars for %s\n", total, inst.Name)
	return nil
}
