// Package risk sizes positions from account equity and stop distance.
package risk

import (
	"math"

	"github.com/shine15/iridium/market"
)

// Inputs describes a planned entry.
//
// QuoteToAccount converts quote-currency P&L into the account currency:
// 1.0 for a USD account trading EUR_USD, 1/USDJPY for USD_JPY.
type Inputs struct {
	Equity         float64
	RiskPct        float64
	EntryPrice     float64
	StopPrice      float64
	Instrument     market.Instrument
	QuoteToAccount float64
}

type Result struct {
	Units      float64
	StopPips   float64
	RiskAmount float64
}

// Calculate returns the largest whole unit count whose loss at the stop
// stays within RiskPct of equity.
func Calculate(in Inputs) Result {
	pip := in.Instrument.PipSize()
	stopPips := math.Abs(in.EntryPrice-in.StopPrice) / pip

	riskAmt := in.Equity * in.RiskPct
	if stopPips == 0 {
		return Result{RiskAmount: riskAmt}
	}
	pipValuePerUnit := pip * in.QuoteToAccount

	units := riskAmt / (stopPips * pipValuePerUnit)

	return Result{
		Units:      math.Floor(units),
		StopPips:   stopPips,
		RiskAmount: riskAmt,
	}
}

// PlannedRisk is the account-currency loss if the stop is hit.
func PlannedRisk(units, entry, stop, quoteToAccount float64) float64 {
	return math.Abs(units) * math.Abs(entry-stop) * quoteToAccount
}

// RR is the reward-to-risk ratio of an entry/stop/take-profit triple.
func RR(entry, stop, takeProfit float64) float64 {
	risk := math.Abs(entry - stop)
	if risk == 0 {
		return 0
	}
	return math.Abs(takeProfit-entry) / risk
}
