package ingest

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ulikunitz/xz/lzma"

	"github.com/shine15/iridium/market"
)

// DefaultDukasURL is the public Dukascopy datafeed root.
const DefaultDukasURL = "https://datafeed.dukascopy.com/datafeed"

// tickRecord is one 20-byte big-endian row of a .bi5 hour file: millisecond
// offset into the hour, ask and bid in points, then volumes.
type tickRecord struct {
	Ms     uint32
	Ask    uint32
	Bid    uint32
	AskVol float32
	BidVol float32
}

// Tick is one decoded Dukascopy tick.
type Tick struct {
	Time time.Time
	Bid  float64
	Ask  float64
}

// Mid is the bid/ask midpoint.
func (t Tick) Mid() float64 { return (t.Bid + t.Ask) / 2 }

// Dukas downloads and decodes Dukascopy hourly tick archives.
type Dukas struct {
	BaseURL string
	Client  *http.Client
	// PointSize scales raw integer prices, 1e-5 for most pairs and 1e-3
	// for JPY quotes. Zero means 1e-5.
	PointSize float64
}

func (d *Dukas) base() string {
	if d.BaseURL == "" {
		return DefaultDukasURL
	}
	return strings.TrimRight(d.BaseURL, "/")
}

func (d *Dukas) client() *http.Client {
	if d.Client == nil {
		return &http.Client{Timeout: 45 * time.Second}
	}
	return d.Client
}

func (d *Dukas) pointSize() float64 {
	if d.PointSize == 0 {
		return 1e-5
	}
	return d.PointSize
}

// HourURL is the archive URL for a symbol hour. Dukascopy months are
// zero-based in the path.
func (d *Dukas) HourURL(symbol string, hour time.Time) string {
	hour = hour.UTC()
	return fmt.Sprintf("%s/%s/%04d/%02d/%02d/%02dh_ticks.bi5",
		d.base(), strings.ToUpper(symbol),
		hour.Year(), int(hour.Month())-1, hour.Day(), hour.Hour())
}

// FetchHour downloads and decodes one hour of ticks. A 404 yields an empty
// slice: Dukascopy simply has no archive for non-trading hours.
func (d *Dukas) FetchHour(ctx context.Context, symbol string, hour time.Time) ([]Tick, error) {
	url := d.HourURL(symbol, hour)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ingest: %s: http status %d", url, resp.StatusCode)
	}
	return d.decodeTicks(resp.Body, hour.UTC().Truncate(time.Hour))
}

func (d *Dukas) decodeTicks(r io.Reader, hour time.Time) ([]Tick, error) {
	lr, err := lzma.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: open lzma stream: %w", err)
	}

	point := d.pointSize()
	var ticks []Tick
	for {
		var rec tickRecord
		err := binary.Read(lr, binary.BigEndian, &rec)
		if err == io.EOF {
			return ticks, nil
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: decode tick %d: %w", len(ticks), err)
		}
		ticks = append(ticks, Tick{
			Time: hour.Add(time.Duration(rec.Ms) * time.Millisecond),
			Bid:  float64(rec.Bid) * point,
			Ask:  float64(rec.Ask) * point,
		})
	}
}

// MinuteBars aggregates ticks into M1 mid-price bars. Volume counts ticks.
func MinuteBars(ticks []Tick) []market.Bar {
	if len(ticks) == 0 {
		return nil
	}
	byMinute := make(map[int64][]Tick)
	for _, tick := range ticks {
		key := tick.Time.Truncate(time.Minute).Unix()
		byMinute[key] = append(byMinute[key], tick)
	}

	bars := make([]market.Bar, 0, len(byMinute))
	for key, group := range byMinute {
		bar := market.Bar{
			Time:   key,
			Open:   group[0].Mid(),
			Close:  group[len(group)-1].Mid(),
			High:   group[0].Mid(),
			Low:    group[0].Mid(),
			Volume: uint32(len(group)),
		}
		for _, tick := range group[1:] {
			mid := tick.Mid()
			if mid > bar.High {
				bar.High = mid
			}
			if mid < bar.Low {
				bar.Low = mid
			}
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time < bars[j].Time })
	return bars
}
