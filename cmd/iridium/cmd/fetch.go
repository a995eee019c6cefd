package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/history"
	"github.com/shine15/iridium/market"
	"github.com/shine15/iridium/oanda"
)

const tokenEnv = "OANDA_API_TOKEN"

var (
	fetchInstrument string
	fetchFreq       string
	fetchFrom       string
	fetchTo         string
	fetchDBPath     string
	fetchPractice   bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch historical candles from OANDA into the price database",
	Long: `Fetch downloads completed candles from the OANDA v20 API and writes them
to the local SQLite price database. The API token is read from the
` + tokenEnv + ` environment variable, or from a .env file in the working
directory.

Example:
  iridium fetch -i EUR_USD -f M1 --from 2019-01-01 --to 2019-02-01 -d prices.db`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVarP(&fetchInstrument, "instrument", "i", "", "instrument, e.g. EUR_USD (required)")
	fetchCmd.Flags().StringVarP(&fetchFreq, "frequency", "f", "M1", "candle frequency (M1..H12, D, W)")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start date, YYYY-MM-DD (required)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end date, YYYY-MM-DD, exclusive (required)")
	fetchCmd.Flags().StringVarP(&fetchDBPath, "db", "d", "./prices.db", "path to SQLite price database")
	fetchCmd.Flags().BoolVar(&fetchPractice, "practice", true, "use the OANDA practice environment")
	fetchCmd.MarkFlagRequired("instrument")
	fetchCmd.MarkFlagRequired("from")
	fetchCmd.MarkFlagRequired("to")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if _, err := market.ParseInstrument(fetchInstrument); err != nil {
		return err
	}
	freq, err := calendar.ParseFrequency(fetchFreq)
	if err != nil {
		return err
	}
	from, err := time.Parse("2006-01-02", fetchFrom)
	if err != nil {
		return fmt.Errorf("bad --from: %w", err)
	}
	to, err := time.Parse("2006-01-02", fetchTo)
	if err != nil {
		return fmt.Errorf("bad --to: %w", err)
	}

	// .env is optional; the environment may carry the token already
	_ = godotenv.Load()
	token := os.Getenv(tokenEnv)
	if token == "" {
		return fmt.Errorf("%s is not set", tokenEnv)
	}

	store, err := history.OpenSQLite(fetchDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	client := oanda.NewClient(token, fetchPractice)
	n, err := client.FetchRange(ctx, fetchInstrument, freq, from, to, func(bars []market.Bar) error {
		slog.Info("writing page", "instrument", fetchInstrument, "bars", len(bars))
		return store.WriteBars(ctx, fetchInstrument, freq, bars)
	})
	if err != nil {
		return err
	}
	cmd.Printf("wrote %d %s bars for %s\n", n, freq, fetchInstrument)
	return nil
}
