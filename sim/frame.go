package sim

import "github.com/shine15/iridium/market"

// Frame is the rolling bar window handed to the strategy for one
// instrument: the session lookback plus every minute row seen so far, in
// time order. Minutes with no trading data appear as NaN bars.
type Frame struct {
	Instrument string
	bars       []market.Bar
}

func NewFrame(instrument string, lookback []market.Bar) *Frame {
	bars := make([]market.Bar, len(lookback))
	copy(bars, lookback)
	return &Frame{Instrument: instrument, bars: bars}
}

func (f *Frame) Append(b market.Bar) { f.bars = append(f.bars, b) }

func (f *Frame) Len() int { return len(f.bars) }

// Bars returns the window in time order. The slice is shared; callers must
// not modify it.
func (f *Frame) Bars() []market.Bar { return f.bars }

// Last returns the newest bar. It may be a NaN placeholder.
func (f *Frame) Last() market.Bar { return f.bars[len(f.bars)-1] }

// Closes returns the close column of the window, NaNs included.
func (f *Frame) Closes() []float64 {
	closes := make([]float64, len(f.bars))
	for i, b := range f.bars {
		closes[i] = b.Close
	}
	return closes
}
