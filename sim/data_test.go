package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/history"
	"github.com/shine15/iridium/market"
)

var dataAt = time.Date(2019, 1, 8, 22, 0, 0, 0, time.UTC)

func newTestData(t *testing.T) *MarketData {
	t.Helper()
	store := history.NewMemoryStore()
	ctx := context.Background()

	write := func(instrument string, close float64) {
		bar := market.Bar{Time: dataAt.Unix(), Open: close, Close: close, High: close, Low: close, Volume: 1}
		require.NoError(t, store.WriteBars(ctx, instrument, calendar.M1, []market.Bar{bar}))
	}
	write("EUR_USD", 1.1000)
	write("USD_JPY", 108.50)
	write("AUD_USD", 0.7100)

	data, err := NewMarketData(ctx, store)
	require.NoError(t, err)
	return data
}

func TestAccountRates(t *testing.T) {
	t.Parallel()
	data := newTestData(t)
	ctx := context.Background()

	rates, err := data.AccountRates(ctx, "USD", []string{"USD", "EUR", "JPY", "AUD"}, dataAt)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, rates["USD"], 1e-9)
	assert.InDelta(t, 1/1.1000, rates["EUR"], 1e-9, "inverse pair EUR_USD")
	assert.InDelta(t, 108.50, rates["JPY"], 1e-9, "direct pair USD_JPY")
	assert.InDelta(t, 1/0.7100, rates["AUD"], 1e-9)
}

func TestAccountRatesNoDataSet(t *testing.T) {
	t.Parallel()
	data := newTestData(t)

	_, err := data.AccountRates(context.Background(), "USD", []string{"GBP"}, dataAt)
	assert.ErrorIs(t, err, ErrNoDataSet)
}

func TestAccountRatesNoPriceData(t *testing.T) {
	t.Parallel()
	data := newTestData(t)

	// the pair exists but has no bar one minute later
	_, err := data.AccountRates(context.Background(), "USD", []string{"EUR"}, dataAt.Add(time.Minute))
	assert.ErrorIs(t, err, ErrNoPriceData)
}

func TestBarsAtMissingMinute(t *testing.T) {
	t.Parallel()
	data := newTestData(t)
	ctx := context.Background()

	bars, err := data.BarsAt(ctx, []string{"EUR_USD", "USD_JPY"}, calendar.M1, dataAt)
	require.NoError(t, err)
	require.NotNil(t, bars["EUR_USD"])
	assert.InDelta(t, 1.1000, bars["EUR_USD"].Close, 1e-9)

	bars, err = data.BarsAt(ctx, []string{"EUR_USD"}, calendar.M1, dataAt.Add(time.Minute))
	require.NoError(t, err)
	assert.Nil(t, bars["EUR_USD"], "minute with no bar maps to nil")
}

func TestBarsAtUnknownSeries(t *testing.T) {
	t.Parallel()
	data := newTestData(t)

	_, err := data.BarsAt(context.Background(), []string{"GBP_USD"}, calendar.M1, dataAt)
	assert.ErrorIs(t, err, history.ErrDataSourceUnavailable)
}

func TestTradable(t *testing.T) {
	t.Parallel()
	data := newTestData(t)

	assert.True(t, data.Tradable("EUR_USD"))
	assert.False(t, data.Tradable("GBP_USD"))
}
