package history

import (
	"fmt"
	"time"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/internal/alg"
	"github.com/shine15/iridium/market"
)

// Resample aggregates bars of a finer frequency into a coarser one. Buckets
// follow the trading calendar at the target frequency over [start, end], so
// resampled output matches what a direct read at the coarser frequency would
// return over the same range. Buckets whose source coverage does not span a
// full target window are dropped rather than emitted incomplete.
func Resample(bars []market.Bar, from, to calendar.DataFrequency, start, end time.Time) ([]market.Bar, error) {
	if !from.Valid() || !to.Valid() {
		return nil, calendar.ErrInvalidFrequency
	}
	if to <= from {
		return nil, fmt.Errorf("resample: target %s must be coarser than source %s", to, from)
	}

	sessions, err := calendar.TradingSessions(start, end, to)
	if err != nil {
		return nil, err
	}

	times := make([]int64, len(bars))
	for i, b := range bars {
		times[i] = b.Time
	}

	var out []market.Bar
	for _, sess := range sessions {
		lo := alg.SearchLeft(times, sess.Start.Unix())
		switch {
		case lo < 0:
			lo = 0
		case times[lo] < sess.Start.Unix():
			lo++
		}
		hi := alg.SearchLeft(times, sess.End.Unix())
		if hi < 0 || lo > hi {
			continue
		}

		window := bars[lo : hi+1]
		if from < calendar.D {
			span := window[len(window)-1].Time - window[0].Time + from.Seconds()
			if span < to.Seconds() {
				continue
			}
		}

		agg := market.Bar{
			Time: sess.Start.Unix(),
			Open: window[0].Open,
			High: window[0].High,
			Low:  window[0].Low,
		}
		var volume uint64
		for _, b := range window {
			if b.High > agg.High {
				agg.High = b.High
			}
			if b.Low < agg.Low {
				agg.Low = b.Low
			}
			agg.Close = b.Close
			volume += uint64(b.Volume)
		}
		agg.Volume = uint32(volume)
		out = append(out, agg)
	}
	return out, nil
}
