package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shine15/iridium/config"
	"github.com/shine15/iridium/history"
	"github.com/shine15/iridium/journal"
	"github.com/shine15/iridium/sim"
	"github.com/shine15/iridium/strategies"
)

var runConfigPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest described by a config file",
	Long: `Run executes a backtest: trading sessions are derived from the configured
period and frequency, the strategy is invoked once per simulated minute, and
trades plus a per-minute performance table are written to the journal.

Example:
  iridium run -c configs/sma-cross.yaml`,
	RunE: runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to YAML or JSON config (required)")
	runCmd.MarkFlagRequired("config")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return err
	}
	params, err := cfg.Parameters()
	if err != nil {
		return err
	}

	store, err := history.OpenSQLite(cfg.Data.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	strategy, err := strategies.ByName(cfg.Strategy.Name, strategies.Config{
		Instrument: cfg.Strategy.Instrument,
		Units:      cfg.Strategy.Units,
		FastPeriod: cfg.Strategy.FastPeriod,
		SlowPeriod: cfg.Strategy.SlowPeriod,
		RiskPct:    cfg.Strategy.RiskPct,
		StopPips:   cfg.Strategy.StopPips,
		RR:         cfg.Strategy.RR,
	})
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(strategies.Names(), ", "))
	}

	ctx := cmd.Context()
	data, err := sim.NewMarketData(ctx, store)
	if err != nil {
		return err
	}

	s := sim.NewSimulation(params, data, strategy, j, slog.Default())
	result, err := s.Run(ctx)
	if err != nil {
		return err
	}

	printResult(cmd, s, result)
	return nil
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "none":
		return journal.Discard{}, nil
	case "csv":
		return journal.NewCSV(cfg.TradesFile, cfg.PerfFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}

func printResult(cmd *cobra.Command, s *sim.Simulation, result *sim.Result) {
	trader := s.Trader()
	closed, wins := 0, 0
	for _, tr := range trader.Trades() {
		if tr.State != sim.TradeClosed {
			continue
		}
		closed++
		if tr.RealizedPL > 0 {
			wins++
		}
	}

	cmd.Printf("state:          %s\n", result.State)
	cmd.Printf("final balance:  %.2f\n", result.Balance)
	cmd.Printf("orders:         %d\n", len(trader.Orders()))
	cmd.Printf("trades closed:  %d (%d wins)\n", closed, wins)
	if n := len(result.Perfs); n > 0 {
		last := result.Perfs[n-1]
		cmd.Printf("final NAV:      %.2f (margin used %.2f)\n", last.NAV, last.MarginUsed)
	}
}
