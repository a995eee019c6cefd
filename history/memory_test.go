package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/market"
)

// sessionOpen is 2019-01-08 17:00 New York, the open of the Jan 9 session.
var sessionOpen = time.Date(2019, 1, 8, 22, 0, 0, 0, time.UTC)

// minuteBars builds n synthetic M1 bars starting at sessionOpen.
func minuteBars(n int) []market.Bar {
	bars := make([]market.Bar, n)
	for k := range bars {
		open := 1.1000 + 0.0001*float64(k)
		bars[k] = market.Bar{
			Time:   sessionOpen.Unix() + int64(60*k),
			Open:   open,
			Close:  open + 0.00005,
			High:   open + 0.0001,
			Low:    open - 0.0001,
			Volume: 10,
		}
	}
	return bars
}

func newMemory(t *testing.T, n int) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	require.NoError(t, store.WriteBars(context.Background(), "EUR_USD", calendar.M1, minuteBars(n)))
	return store
}

func TestMemoryReadAt(t *testing.T) {
	t.Parallel()
	store := newMemory(t, 10)
	ctx := context.Background()

	bar, ok, err := store.ReadAt(ctx, "EUR_USD", calendar.M1, sessionOpen.Add(3*time.Minute))
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1.1003, bar.Open, 1e-9)

	// Off-grid instant: no bar, no error.
	_, ok, err = store.ReadAt(ctx, "EUR_USD", calendar.M1, sessionOpen.Add(90*time.Second))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryReadBefore(t *testing.T) {
	t.Parallel()
	store := newMemory(t, 10)
	ctx := context.Background()

	// Strictly before: the bar at the instant itself is excluded.
	bars, err := store.ReadBefore(ctx, "EUR_USD", calendar.M1, sessionOpen.Add(5*time.Minute), 3)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, sessionOpen.Unix()+120, bars[0].Time)
	assert.Equal(t, sessionOpen.Unix()+240, bars[2].Time)

	// Fewer bars than requested.
	bars, err = store.ReadBefore(ctx, "EUR_USD", calendar.M1, sessionOpen.Add(time.Minute), 5)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, sessionOpen.Unix(), bars[0].Time)

	// Nothing before the first bar.
	bars, err = store.ReadBefore(ctx, "EUR_USD", calendar.M1, sessionOpen, 5)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestMemoryReadRange(t *testing.T) {
	t.Parallel()
	store := newMemory(t, 10)
	ctx := context.Background()

	// Both endpoints inclusive.
	bars, err := store.ReadRange(ctx, "EUR_USD", calendar.M1,
		sessionOpen.Add(2*time.Minute), sessionOpen.Add(4*time.Minute))
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, sessionOpen.Unix()+120, bars[0].Time)
	assert.Equal(t, sessionOpen.Unix()+240, bars[2].Time)

	bars, err = store.ReadRange(ctx, "EUR_USD", calendar.M1,
		sessionOpen.Add(time.Hour), sessionOpen.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestMemoryMissingSeries(t *testing.T) {
	t.Parallel()
	store := newMemory(t, 10)
	ctx := context.Background()

	_, _, err := store.ReadAt(ctx, "GBP_USD", calendar.M1, sessionOpen)
	assert.ErrorIs(t, err, ErrDataSourceUnavailable)

	_, err = store.ReadBefore(ctx, "EUR_USD", calendar.H1, sessionOpen, 5)
	assert.ErrorIs(t, err, ErrDataSourceUnavailable)
}

func TestMemoryInstruments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemoryStore()
	require.NoError(t, store.WriteBars(ctx, "EUR_USD", calendar.M1, minuteBars(1)))
	require.NoError(t, store.WriteBars(ctx, "USD_JPY", calendar.M1, minuteBars(1)))
	require.NoError(t, store.WriteBars(ctx, "GBP_USD", calendar.H1, minuteBars(1)))

	names, err := store.Instruments(ctx)
	require.NoError(t, err)
	// Only instruments with minute data can drive a simulation.
	assert.Equal(t, []string{"EUR_USD", "USD_JPY"}, names)
}

func TestMemoryWriteReplacesDuplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newMemory(t, 3)
	update := []market.Bar{{Time: sessionOpen.Unix(), Open: 2.0, Close: 2.0, High: 2.0, Low: 2.0, Volume: 1}}
	require.NoError(t, store.WriteBars(ctx, "EUR_USD", calendar.M1, update))

	bar, ok, err := store.ReadAt(ctx, "EUR_USD", calendar.M1, sessionOpen)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 2.0, bar.Open, 1e-9)

	bars, err := store.ReadRange(ctx, "EUR_USD", calendar.M1, sessionOpen, sessionOpen.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, bars, 3)
}
