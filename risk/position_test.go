package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine15/iridium/market"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	eurUSD, err := market.ParseInstrument("EUR_USD")
	require.NoError(t, err)

	// 0.5% of 100k = $500 risked over a 20 pip stop at $0.0001/pip/unit
	out := Calculate(Inputs{
		Equity:         100_000,
		RiskPct:        0.005,
		EntryPrice:     1.1020,
		StopPrice:      1.1000,
		Instrument:     eurUSD,
		QuoteToAccount: 1.0,
	})
	assert.InDelta(t, 20, out.StopPips, 1e-6)
	assert.InDelta(t, 500, out.RiskAmount, 1e-9)
	assert.InDelta(t, 250_000, out.Units, 1)
}

func TestCalculateZeroStopDistance(t *testing.T) {
	t.Parallel()

	eurUSD, err := market.ParseInstrument("EUR_USD")
	require.NoError(t, err)

	out := Calculate(Inputs{
		Equity:         100_000,
		RiskPct:        0.005,
		EntryPrice:     1.1020,
		StopPrice:      1.1020,
		Instrument:     eurUSD,
		QuoteToAccount: 1.0,
	})
	assert.Zero(t, out.Units)
	assert.Zero(t, out.StopPips)
	assert.InDelta(t, 500, out.RiskAmount, 1e-9)
}

func TestCalculateJPYQuote(t *testing.T) {
	t.Parallel()

	usdJPY, err := market.ParseInstrument("USD_JPY")
	require.NoError(t, err)

	out := Calculate(Inputs{
		Equity:         10_000,
		RiskPct:        0.01,
		EntryPrice:     110.20,
		StopPrice:      110.00,
		Instrument:     usdJPY,
		QuoteToAccount: 1.0 / 110.20,
	})
	assert.InDelta(t, 20, out.StopPips, 1e-6)
	// risk $100 over 20 pips at 0.01/110.20 per pip per unit
	assert.InDelta(t, 55100, out.Units, 1)
}

func TestPlannedRiskAndRR(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 200, PlannedRisk(100_000, 1.1020, 1.1000, 1.0), 1e-6)
	assert.InDelta(t, 2.0, RR(1.1000, 1.0990, 1.1020), 1e-9)
	assert.Zero(t, RR(1.1, 1.1, 1.2))
}
