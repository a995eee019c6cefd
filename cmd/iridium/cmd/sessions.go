package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shine15/iridium/calendar"
)

var (
	sessionsFreq string
	sessionsFrom string
	sessionsTo   string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Print trading sessions for a period",
	Long: `Sessions prints the forex trading sessions between two dates at the given
frequency. Daily sessions open 17:00 New York the previous day; weekends and
observed holidays are skipped.

Example:
  iridium sessions --from 2019-01-01 --to 2019-01-15 -f D`,
	RunE: runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.Flags().StringVarP(&sessionsFreq, "frequency", "f", "D", "session frequency (M1..H12, D, W)")
	sessionsCmd.Flags().StringVar(&sessionsFrom, "from", "", "start date, YYYY-MM-DD (required)")
	sessionsCmd.Flags().StringVar(&sessionsTo, "to", "", "end date, YYYY-MM-DD (required)")
	sessionsCmd.MarkFlagRequired("from")
	sessionsCmd.MarkFlagRequired("to")
}

func runSessions(cmd *cobra.Command, args []string) error {
	freq, err := calendar.ParseFrequency(sessionsFreq)
	if err != nil {
		return err
	}
	from, err := time.Parse("2006-01-02", sessionsFrom)
	if err != nil {
		return fmt.Errorf("bad --from: %w", err)
	}
	to, err := time.Parse("2006-01-02", sessionsTo)
	if err != nil {
		return fmt.Errorf("bad --to: %w", err)
	}
	// include the final day up to its last second
	to = to.Add(24*time.Hour - time.Second)

	sessions, err := calendar.TradingSessions(from, to, freq)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		cmd.Printf("%s  ->  %s\n", s.Start.Format(time.RFC3339), s.End.Format(time.RFC3339))
	}
	cmd.Printf("%d sessions\n", len(sessions))
	return nil
}
