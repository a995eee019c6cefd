// Package strategies bundles the built-in trading strategies and a name
// registry the CLI resolves them through.
package strategies

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shine15/iridium/sim"
)

var registry = make(map[string]func(cfg Config) (sim.Strategy, error))

// Config carries the knobs a strategy constructor may use. Unused fields
// are ignored by strategies that do not need them.
type Config struct {
	Instrument string
	Units      float64

	FastPeriod int
	SlowPeriod int

	RiskPct  float64
	StopPips float64
	// RR is the take-profit distance as a multiple of the stop distance.
	RR float64
}

// Register adds a named strategy constructor. Later registrations under
// the same name win.
func Register(name string, build func(cfg Config) (sim.Strategy, error)) {
	registry[strings.ToLower(name)] = build
}

// Names lists the registered strategy names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// ByName builds the named strategy.
func ByName(name string, cfg Config) (sim.Strategy, error) {
	build, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("strategies: unknown strategy %q", name)
	}
	return build(cfg)
}

func init() {
	Register("noop", func(Config) (sim.Strategy, error) {
		return Noop{}, nil
	})
	Register("open-once", func(cfg Config) (sim.Strategy, error) {
		if cfg.Instrument == "" || cfg.Units == 0 {
			return nil, fmt.Errorf("strategies: open-once needs an instrument and units")
		}
		return &OpenOnce{Instrument: cfg.Instrument, Units: cfg.Units, StopPips: cfg.StopPips, RR: cfg.RR}, nil
	})
	Register("sma-cross", func(cfg Config) (sim.Strategy, error) {
		return NewSMACross(cfg)
	})
}

// Noop ignores every tick. Useful for dry runs over a data set.
type Noop struct{}

func (Noop) HandleTick(context.Context, *sim.Trader, map[string]*sim.Frame, time.Time) error {
	return nil
}
