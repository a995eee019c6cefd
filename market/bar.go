package market

import (
	"math"
	"time"
)

// Bar is one OHLCV price bar. Time is the bar open in unix seconds.
type Bar struct {
	Time   int64
	Open   float64
	Close  float64
	High   float64
	Low    float64
	Volume uint32
}

// At returns the bar open as a time.Time in UTC.
func (b Bar) At() time.Time {
	return time.Unix(b.Time, 0).UTC()
}

// NaN reports whether the bar is a placeholder with no price data.
func (b Bar) NaN() bool {
	return math.IsNaN(b.Close)
}

// NaNBar returns a placeholder bar for an instant with no trading data.
func NaNBar(at time.Time) Bar {
	nan := math.NaN()
	return Bar{
		Time: at.Unix(),
		Open: nan, Close: nan, High: nan, Low: nan,
	}
}
