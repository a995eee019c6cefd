// Package ingest reads external price data into bars: OHLCV CSV exports and
// Dukascopy tick archives.
package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/shine15/iridium/market"
)

// ReadCSV parses rows of time,open,high,low,close,volume into bars, sorted
// ascending. The time column accepts unix seconds or RFC 3339. A header row
// is detected and skipped. UTF-16 input (common for MT4/MT5 exports) is
// decoded via its byte-order mark.
func ReadCSV(r io.Reader) ([]market.Bar, error) {
	br := bufio.NewReader(r)
	if b, _ := br.Peek(2); len(b) >= 2 && ((b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF)) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		br = bufio.NewReader(transform.NewReader(br, dec))
	}

	cr := csv.NewReader(br)
	cr.TrimLeadingSpace = true

	var bars []market.Bar
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read csv: %w", err)
		}
		line++
		if len(record) < 5 {
			return nil, fmt.Errorf("ingest: line %d: want at least 5 columns, got %d", line, len(record))
		}

		at, err := parseTime(record[0])
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("ingest: line %d: %w", line, err)
		}

		bar := market.Bar{Time: at}
		for i, dst := range []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close} {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("ingest: line %d column %d: %w", line, i+2, err)
			}
			*dst = v
		}
		if len(record) > 5 && strings.TrimSpace(record[5]) != "" {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
			if err != nil {
				return nil, fmt.Errorf("ingest: line %d volume: %w", line, err)
			}
			bar.Volume = uint32(v)
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time < bars[j].Time })
	return bars, nil
}

func parseTime(field string) (int64, error) {
	field = strings.TrimSpace(field)
	if secs, err := strconv.ParseInt(field, 10, 64); err == nil {
		return secs, nil
	}
	if at, err := time.Parse(time.RFC3339, field); err == nil {
		return at.Unix(), nil
	}
	// MT4 export style, naive UTC
	if at, err := time.Parse("2006-01-02 15:04:05", field); err == nil {
		return at.Unix(), nil
	}
	return 0, fmt.Errorf("unrecognized time %q", field)
}
