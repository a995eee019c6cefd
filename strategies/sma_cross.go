package strategies

import (
	"context"
	"fmt"
	"time"

	"github.com/shine15/iridium/indicators"
	"github.com/shine15/iridium/market"
	"github.com/shine15/iridium/risk"
	"github.com/shine15/iridium/sim"
)

// SMACross trades a single instrument on a fast/slow moving-average
// crossover. It enters only on a cross, reverses on the opposite cross by
// letting the engine net out the open position, and sizes entries with
// risk.Calculate against a fixed pip stop.
type SMACross struct {
	instrument market.Instrument

	fastPeriod int
	slowPeriod int

	riskPct  float64
	stopPips float64
	rr       float64

	lastDiff     float64
	haveLastDiff bool
}

func NewSMACross(cfg Config) (*SMACross, error) {
	inst, err := market.ParseInstrument(cfg.Instrument)
	if err != nil {
		return nil, err
	}
	if cfg.FastPeriod <= 0 || cfg.SlowPeriod <= cfg.FastPeriod {
		return nil, fmt.Errorf("strategies: sma-cross needs 0 < fast < slow, got %d/%d", cfg.FastPeriod, cfg.SlowPeriod)
	}
	if cfg.RiskPct <= 0 || cfg.StopPips <= 0 {
		return nil, fmt.Errorf("strategies: sma-cross needs positive risk pct and stop pips")
	}
	rr := cfg.RR
	if rr <= 0 {
		rr = 2.0
	}
	return &SMACross{
		instrument: inst,
		fastPeriod: cfg.FastPeriod,
		slowPeriod: cfg.SlowPeriod,
		riskPct:    cfg.RiskPct,
		stopPips:   cfg.StopPips,
		rr:         rr,
	}, nil
}

func (s *SMACross) HandleTick(ctx context.Context, trader *sim.Trader, frames map[string]*sim.Frame, now time.Time) error {
	frame, ok := frames[s.instrument.Name]
	if !ok {
		return nil
	}
	last := frame.Last()
	if last.NaN() {
		return nil
	}
	closes := frame.Closes()

	fast, err := indicators.SMA(closes, s.fastPeriod)
	if err != nil {
		return nil // still warming up
	}
	slow, err := indicators.SMA(closes, s.slowPeriod)
	if err != nil {
		return nil
	}

	diff := fast - slow
	if !s.haveLastDiff {
		s.lastDiff = diff
		s.haveLastDiff = true
		return nil
	}
	bullCross := diff > 0 && s.lastDiff <= 0
	bearCross := diff < 0 && s.lastDiff >= 0
	s.lastDiff = diff

	switch {
	case bullCross:
		return s.enter(trader, last.Close, now, +1)
	case bearCross:
		return s.enter(trader, last.Close, now, -1)
	default:
		return nil
	}
}

// openUnits is the net open position in the strategy's instrument. Trades
// the engine closed through stops are naturally excluded.
func (s *SMACross) openUnits(trader *sim.Trader) float64 {
	var units float64
	for _, tr := range trader.OpenTrades() {
		if tr.Instrument == s.instrument.Name {
			units += tr.CurrentUnits
		}
	}
	return units
}

func (s *SMACross) enter(trader *sim.Trader, price float64, now time.Time, dir float64) error {
	position := s.openUnits(trader)
	// same-direction cross with a position already on: nothing to do
	if position*dir > 0 {
		return nil
	}

	stopDist := s.stopPips * s.instrument.PipSize()
	stop := price - dir*stopDist
	tp := price + dir*stopDist*s.rr

	sized := risk.Calculate(risk.Inputs{
		Equity:         trader.Balance(),
		RiskPct:        s.riskPct,
		EntryPrice:     price,
		StopPrice:      stop,
		Instrument:     s.instrument,
		QuoteToAccount: 1.0,
	})
	if sized.Units < 1 {
		return nil
	}

	// one order both nets out any opposite position and opens the new one
	units := dir*sized.Units - position
	_, err := trader.CreateMarketOrder(sim.MarketOrderSpec{
		Instrument: s.instrument.Name,
		Units:      units,
		Price:      price,
		StopLoss:   &stop,
		TakeProfit: &tp,
	}, now)
	return err
}
