package sim

import (
	"fmt"
	"time"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/market"
)

// Parameters holds the account and run settings for a simulation. Balance is
// mutated as realized P&L accrues; everything else is fixed for the run.
type Parameters struct {
	Start time.Time
	End   time.Time

	Instruments []string

	AccountCurrency string
	Balance         float64
	Leverage        float64

	// Spread and Commission are folded into the entry price of every trade,
	// quoted in price units of the traded pair.
	Spread     float64
	Commission float64

	Frequency calendar.DataFrequency

	// HistoryCount is the number of bars of lookback handed to the strategy
	// at the start of each session.
	HistoryCount int
}

// DefaultParameters returns a parameter set with the customary account
// settings filled in. Start, End and Instruments must still be provided.
func DefaultParameters() Parameters {
	return Parameters{
		AccountCurrency: "USD",
		Balance:         100_000,
		Leverage:        50,
		Frequency:       calendar.D,
		HistoryCount:    60,
	}
}

func (p *Parameters) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("sim: start and end are required: %w", calendar.ErrInvalidTimeSpec)
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("sim: end %v before start %v: %w", p.End, p.Start, calendar.ErrInvalidTimeSpec)
	}
	if !p.Frequency.Valid() {
		return fmt.Errorf("sim: %w: %d", calendar.ErrInvalidFrequency, p.Frequency)
	}
	if len(p.Instruments) == 0 {
		return fmt.Errorf("sim: at least one instrument is required")
	}
	for _, name := range p.Instruments {
		if _, err := market.ParseInstrument(name); err != nil {
			return err
		}
	}
	if len(p.AccountCurrency) != 3 {
		return fmt.Errorf("sim: invalid account currency %q", p.AccountCurrency)
	}
	if p.Balance <= 0 {
		return fmt.Errorf("sim: starting balance must be positive, got %v", p.Balance)
	}
	if p.Leverage <= 0 {
		return fmt.Errorf("sim: leverage must be positive, got %v", p.Leverage)
	}
	if p.Spread < 0 || p.Commission < 0 {
		return fmt.Errorf("sim: spread and commission must be non-negative")
	}
	if p.HistoryCount <= 0 {
		return fmt.Errorf("sim: history count must be positive, got %d", p.HistoryCount)
	}
	return nil
}
