package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/internal/alg"
	"github.com/shine15/iridium/market"
)

// MemoryStore keeps bar series in sorted in-memory slices. It backs tests and
// resampling pipelines; the sqlite store is the on-disk equivalent.
type MemoryStore struct {
	mu     sync.RWMutex
	series map[string]*series
}

type series struct {
	times []int64
	bars  []market.Bar
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{series: make(map[string]*series)}
}

func seriesKey(instrument string, freq calendar.DataFrequency) string {
	return instrument + "_" + freq.String()
}

func (m *MemoryStore) WriteBars(ctx context.Context, instrument string, freq calendar.DataFrequency, bars []market.Bar) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := seriesKey(instrument, freq)
	s, ok := m.series[key]
	if !ok {
		s = &series{}
		m.series[key] = s
	}

	merged := make(map[int64]market.Bar, len(s.bars)+len(bars))
	for _, b := range s.bars {
		merged[b.Time] = b
	}
	for _, b := range bars {
		merged[b.Time] = b
	}

	s.times = s.times[:0]
	s.bars = s.bars[:0]
	for t := range merged {
		s.times = append(s.times, t)
	}
	sort.Slice(s.times, func(i, j int) bool { return s.times[i] < s.times[j] })
	for _, t := range s.times {
		s.bars = append(s.bars, merged[t])
	}
	return nil
}

func (m *MemoryStore) Instruments(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for key := range m.series {
		if name, ok := strings.CutSuffix(key, "_M1"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) ReadRange(ctx context.Context, instrument string, freq calendar.DataFrequency, start, end time.Time) ([]market.Bar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, err := m.lookup(instrument, freq)
	if err != nil {
		return nil, err
	}

	lo := alg.SearchLeft(s.times, start.Unix())
	switch {
	case lo < 0:
		lo = 0
	case s.times[lo] < start.Unix():
		lo++
	}
	hi := alg.SearchLeft(s.times, end.Unix())
	if hi < 0 || lo > hi {
		return nil, nil
	}

	out := make([]market.Bar, hi-lo+1)
	copy(out, s.bars[lo:hi+1])
	return out, nil
}

func (m *MemoryStore) ReadAt(ctx context.Context, instrument string, freq calendar.DataFrequency, at time.Time) (market.Bar, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, err := m.lookup(instrument, freq)
	if err != nil {
		return market.Bar{}, false, err
	}

	i := alg.SearchLeft(s.times, at.Unix())
	if i < 0 || s.times[i] != at.Unix() {
		return market.Bar{}, false, nil
	}
	return s.bars[i], true, nil
}

func (m *MemoryStore) ReadBefore(ctx context.Context, instrument string, freq calendar.DataFrequency, before time.Time, count int) ([]market.Bar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, err := m.lookup(instrument, freq)
	if err != nil {
		return nil, err
	}

	i := alg.SearchLeft(s.times, before.Unix())
	if i >= 0 && s.times[i] == before.Unix() {
		i-- // strictly before
	}
	if i < 0 {
		return nil, nil
	}

	lo := i + 1 - count
	if lo < 0 {
		lo = 0
	}
	out := make([]market.Bar, i+1-lo)
	copy(out, s.bars[lo:i+1])
	return out, nil
}

func (m *MemoryStore) lookup(instrument string, freq calendar.DataFrequency) (*series, error) {
	s, ok := m.series[seriesKey(instrument, freq)]
	if !ok {
		return nil, fmt.Errorf("%w: no %s series for %s", ErrDataSourceUnavailable, freq, instrument)
	}
	return s, nil
}
