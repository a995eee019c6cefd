package strategies

import (
	"context"
	"time"

	"github.com/shine15/iridium/market"
	"github.com/shine15/iridium/sim"
)

// OpenOnce opens a single market position on the first minute with a price
// and then goes quiet. With StopPips set it attaches a stop loss, and with
// RR also set a take profit at RR times the stop distance.
type OpenOnce struct {
	Instrument string
	Units      float64
	StopPips   float64
	RR         float64

	opened bool
}

func (s *OpenOnce) HandleTick(ctx context.Context, trader *sim.Trader, frames map[string]*sim.Frame, now time.Time) error {
	if s.opened {
		return nil
	}
	frame, ok := frames[s.Instrument]
	if !ok {
		return nil
	}
	last := frame.Last()
	if last.NaN() {
		return nil
	}

	spec := sim.MarketOrderSpec{
		Instrument: s.Instrument,
		Units:      s.Units,
		Price:      last.Close,
	}
	if s.StopPips > 0 {
		inst, err := market.ParseInstrument(s.Instrument)
		if err != nil {
			return err
		}
		dir := 1.0
		if s.Units < 0 {
			dir = -1.0
		}
		stopDist := s.StopPips * inst.PipSize()
		stop := last.Close - dir*stopDist
		spec.StopLoss = &stop
		if s.RR > 0 {
			tp := last.Close + dir*stopDist*s.RR
			spec.TakeProfit = &tp
		}
	}
	if _, err := trader.CreateMarketOrder(spec, now); err != nil {
		return err
	}
	s.opened = true
	return nil
}
