package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/history"
	"github.com/shine15/iridium/market"
)

// MarketData answers the price questions the engine asks each minute. Reads
// for multiple instruments fan out concurrently, bounded by a semaphore.
type MarketData struct {
	store       history.Store
	concurrency int
	mu          sync.Mutex

	// tradable is the catalog of instruments with minute data, used to
	// resolve account-currency conversion pairs.
	tradable map[string]bool
}

// NewMarketData loads the instrument catalog from the store. The store must
// be reachable; a catalog failure is fatal to the run.
func NewMarketData(ctx context.Context, store history.Store) (*MarketData, error) {
	names, err := store.Instruments(ctx)
	if err != nil {
		return nil, err
	}
	tradable := make(map[string]bool, len(names))
	for _, name := range names {
		tradable[name] = true
	}
	return &MarketData{
		store:       store,
		concurrency: runtime.NumCPU(),
		tradable:    tradable,
	}, nil
}

// Tradable reports whether the store carries minute data for the instrument.
func (d *MarketData) Tradable(instrument string) bool {
	return d.tradable[instrument]
}

// BarsAt reads the bar opening at the given instant for each instrument.
// Instruments without a bar map to nil. A store failure aborts the whole
// read.
func (d *MarketData) BarsAt(ctx context.Context, instruments []string, freq calendar.DataFrequency, at time.Time) (map[string]*market.Bar, error) {
	out := make(map[string]*market.Bar, len(instruments))
	err := d.forEach(instruments, func(instrument string) error {
		bar, ok, err := d.store.ReadAt(ctx, instrument, freq, at)
		if err != nil {
			return err
		}
		var p *market.Bar
		if ok {
			b := bar
			p = &b
		}
		d.mu.Lock()
		out[instrument] = p
		d.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// History reads the last count bars strictly before the given instant for
// each instrument.
func (d *MarketData) History(ctx context.Context, instruments []string, freq calendar.DataFrequency, before time.Time, count int) (map[string][]market.Bar, error) {
	out := make(map[string][]market.Bar, len(instruments))
	err := d.forEach(instruments, func(instrument string) error {
		bars, err := d.store.ReadBefore(ctx, instrument, freq, before, count)
		if err != nil {
			return err
		}
		d.mu.Lock()
		out[instrument] = bars
		d.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AccountRates resolves the conversion rate from each currency into the
// account currency at the given instant. The account currency itself maps
// to 1. A currency with neither a direct nor an inverse pair against the
// account currency yields ErrNoDataSet; a resolvable pair with no minute
// bar at the instant yields ErrNoPriceData.
func (d *MarketData) AccountRates(ctx context.Context, account string, currencies []string, at time.Time) (map[string]float64, error) {
	type lookup struct {
		pair    string
		inverse bool
	}
	lookups := make(map[string]lookup, len(currencies))
	rates := make(map[string]float64, len(currencies))

	for _, cur := range currencies {
		if _, done := rates[cur]; done {
			continue
		}
		if _, queued := lookups[cur]; queued {
			continue
		}
		if cur == account {
			rates[cur] = 1
			continue
		}
		if direct := market.PairName(account, cur); d.tradable[direct] {
			lookups[cur] = lookup{pair: direct}
			continue
		}
		if inverse := market.PairName(cur, account); d.tradable[inverse] {
			lookups[cur] = lookup{pair: inverse, inverse: true}
			continue
		}
		return nil, fmt.Errorf("%w: %s vs %s", ErrNoDataSet, account, cur)
	}

	if len(lookups) == 0 {
		return rates, nil
	}
	pairs := make([]string, 0, len(lookups))
	for _, l := range lookups {
		pairs = append(pairs, l.pair)
	}
	bars, err := d.BarsAt(ctx, pairs, calendar.M1, at)
	if err != nil {
		return nil, err
	}
	for cur, l := range lookups {
		bar := bars[l.pair]
		if bar == nil || bar.NaN() {
			return nil, fmt.Errorf("%w: %s at %v", ErrNoPriceData, l.pair, at)
		}
		if l.inverse {
			rates[cur] = 1 / bar.Close
		} else {
			rates[cur] = bar.Close
		}
	}
	return rates, nil
}

// forEach runs fn once per instrument on a bounded pool and waits for every
// call to finish. The first error wins.
func (d *MarketData) forEach(instruments []string, fn func(instrument string) error) error {
	sem := make(chan struct{}, d.concurrency)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	for _, instrument := range instruments {
		wg.Add(1)
		sem <- struct{}{}
		go func(instrument string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := fn(instrument); err != nil {
				once.Do(func() { firstErr = err })
			}
		}(instrument)
	}
	wg.Wait()
	return firstErr
}
