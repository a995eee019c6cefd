// Package history provides the price-bar store consumed by the simulation:
// range queries, point-in-time lookups and lookback reads over per-instrument,
// per-frequency series.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/market"
)

// ErrDataSourceUnavailable wraps store open/read failures, including reads
// against an instrument/frequency series that does not exist. These are
// fatal: a simulation cannot proceed without its frequency tables.
var ErrDataSourceUnavailable = errors.New("history: data source unavailable")

// Store is the read contract. All results are ordered ascending by bar time.
type Store interface {
	// Instruments lists the instruments with minute data, the granularity
	// required to drive a simulation.
	Instruments(ctx context.Context) ([]string, error)

	// ReadRange returns the bars with open time inside [start, end].
	ReadRange(ctx context.Context, instrument string, freq calendar.DataFrequency, start, end time.Time) ([]market.Bar, error)

	// ReadAt returns the bar opening exactly at the given instant, if any.
	ReadAt(ctx context.Context, instrument string, freq calendar.DataFrequency, at time.Time) (market.Bar, bool, error)

	// ReadBefore returns the last count bars strictly before the given
	// instant, ascending. Fewer than count bars may be returned.
	ReadBefore(ctx context.Context, instrument string, freq calendar.DataFrequency, before time.Time, count int) ([]market.Bar, error)
}

// Writer is the ingest contract used by the fetch and import commands.
type Writer interface {
	WriteBars(ctx context.Context, instrument string, freq calendar.DataFrequency, bars []market.Bar) error
}
