// Package journal records simulation output: closed trades and the
// per-tick performance table.
package journal

import "time"

// TradeRecord is one closed (or partially closed) position.
type TradeRecord struct {
	TradeID    string
	Instrument string
	Units      float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64
	Reason     string
}

// PerfSnapshot is one row of the run's performance table.
type PerfSnapshot struct {
	Time            time.Time
	NAV             float64
	MarginUsed      float64
	MarginAvailable float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordPerf(PerfSnapshot) error
	Close() error
}

// Discard is a no-op journal for runs that only need in-memory results.
type Discard struct{}

func (Discard) RecordTrade(TradeRecord) error { return nil }
func (Discard) RecordPerf(PerfSnapshot) error { return nil }
func (Discard) Close() error                  { return nil }
