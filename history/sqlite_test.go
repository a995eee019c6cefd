package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine15/iridium/calendar"
)

func newSQLite(t *testing.T) *SQLite {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "history.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()
	store := newSQLite(t)
	ctx := context.Background()

	bars := minuteBars(10)
	require.NoError(t, store.WriteBars(ctx, "EUR_USD", calendar.M1, bars))

	got, err := store.ReadRange(ctx, "EUR_USD", calendar.M1, sessionOpen, sessionOpen.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, bars, got)

	bar, ok, err := store.ReadAt(ctx, "EUR_USD", calendar.M1, sessionOpen.Add(4*time.Minute))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, bars[4], bar)

	_, ok, err = store.ReadAt(ctx, "EUR_USD", calendar.M1, sessionOpen.Add(30*time.Second))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteReadBeforeAscending(t *testing.T) {
	t.Parallel()
	store := newSQLite(t)
	ctx := context.Background()

	bars := minuteBars(10)
	require.NoError(t, store.WriteBars(ctx, "EUR_USD", calendar.M1, bars))

	got, err := store.ReadBefore(ctx, "EUR_USD", calendar.M1, sessionOpen.Add(6*time.Minute), 4)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []int64{
		sessionOpen.Unix() + 120,
		sessionOpen.Unix() + 180,
		sessionOpen.Unix() + 240,
		sessionOpen.Unix() + 300,
	}, []int64{got[0].Time, got[1].Time, got[2].Time, got[3].Time})
}

func TestSQLiteMissingTable(t *testing.T) {
	t.Parallel()
	store := newSQLite(t)
	ctx := context.Background()

	_, _, err := store.ReadAt(ctx, "EUR_USD", calendar.M1, sessionOpen)
	assert.ErrorIs(t, err, ErrDataSourceUnavailable)
}

func TestSQLiteInstruments(t *testing.T) {
	t.Parallel()
	store := newSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.WriteBars(ctx, "EUR_USD", calendar.M1, minuteBars(1)))
	require.NoError(t, store.WriteBars(ctx, "USD_JPY", calendar.M1, minuteBars(1)))
	require.NoError(t, store.WriteBars(ctx, "GBP_USD", calendar.H4, minuteBars(1)))

	names, err := store.Instruments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"EUR_USD", "USD_JPY"}, names)
}

func TestSQLiteUpsert(t *testing.T) {
	t.Parallel()
	store := newSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.WriteBars(ctx, "EUR_USD", calendar.M1, minuteBars(3)))

	update := minuteBars(1)
	update[0].Close = 9.99
	require.NoError(t, store.WriteBars(ctx, "EUR_USD", calendar.M1, update))

	bars, err := store.ReadRange(ctx, "EUR_USD", calendar.M1, sessionOpen, sessionOpen.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.InDelta(t, 9.99, bars[0].Close, 1e-9)
}
