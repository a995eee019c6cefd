package sim

import (
	"fmt"
	"math"
	"time"
)

// TradeState is the lifecycle state of a trade.
type TradeState int

const (
	TradeOpen TradeState = iota
	TradeClosed
)

func (s TradeState) String() string {
	switch s {
	case TradeOpen:
		return "OPEN"
	case TradeClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("TradeState(%d)", int(s))
	}
}

// Trade is an open or closed position in a single instrument. Units are
// signed: positive long, negative short. Price is the effective entry with
// spread and commission already folded in.
type Trade struct {
	ID         string
	Instrument string
	OpenTime   time.Time
	CloseTime  time.Time
	State      TradeState

	InitialUnits  float64
	CurrentUnits  float64
	Price         float64
	InitialMargin float64
	RealizedPL    float64

	TakeProfitOrderID   string
	StopLossOrderID     string
	TrailingStopOrderID string
}

// entryPrice folds half the spread plus the commission into the fill price,
// worsening it in the direction of the position.
func entryPrice(marketPrice, spread, commission, units float64) float64 {
	adj := spread/2 + commission
	if units < 0 {
		adj = -adj
	}
	return marketPrice + adj
}

// UnrealizedPL values the open units at the given price, converted into the
// account currency with the account-vs-quote rate.
func (t *Trade) UnrealizedPL(price, accountVsQuote float64) float64 {
	return (price - t.Price) * t.CurrentUnits * accountVsQuote
}

// MarginUsed is the margin currently held against the open units.
func (t *Trade) MarginUsed(accountVsBase, leverage float64) float64 {
	return marginRequired(t.CurrentUnits, accountVsBase, leverage)
}

// CloseUnits closes up to |units| of the position at price, realizing the
// proportional P&L in account currency. Closing the last unit moves the
// trade to CLOSED and stamps the close time.
func (t *Trade) CloseUnits(units, price, accountVsQuote float64, at time.Time) (float64, error) {
	if t.State == TradeClosed {
		return 0, fmt.Errorf("sim: trade %s already closed", t.ID)
	}
	size := math.Min(math.Abs(units), math.Abs(t.CurrentUnits))
	closed := math.Copysign(size, t.CurrentUnits)
	pl := (price - t.Price) * closed * accountVsQuote
	t.CurrentUnits -= closed
	t.RealizedPL += pl
	if t.CurrentUnits == 0 {
		t.State = TradeClosed
		t.CloseTime = at
	}
	return pl, nil
}

// Close closes the whole remaining position.
func (t *Trade) Close(price, accountVsQuote float64, at time.Time) (float64, error) {
	return t.CloseUnits(t.CurrentUnits, price, accountVsQuote, at)
}
