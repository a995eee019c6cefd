// Package indicators provides moving-average calculations over close-price
// series. Inputs may contain NaN placeholders for minutes without trading
// data; those rows are skipped.
package indicators

import (
	"fmt"
	"math"
)

// SMA is the simple moving average of the last period non-NaN closes.
func SMA(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("indicators: period must be positive, got %d", period)
	}
	valid := compact(closes)
	if len(valid) < period {
		return 0, fmt.Errorf("indicators: not enough data: need %d, got %d", period, len(valid))
	}
	sum := 0.0
	for _, c := range valid[len(valid)-period:] {
		sum += c
	}
	return sum / float64(period), nil
}

// EMA is the exponential moving average over the non-NaN closes, seeded
// with the SMA of the first period values.
func EMA(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("indicators: period must be positive, got %d", period)
	}
	valid := compact(closes)
	if len(valid) < period {
		return 0, fmt.Errorf("indicators: not enough data: need %d, got %d", period, len(valid))
	}

	multiplier := 2.0 / float64(period+1)

	seed := 0.0
	for _, c := range valid[:period] {
		seed += c
	}
	ema := seed / float64(period)

	for _, c := range valid[period:] {
		ema = (c-ema)*multiplier + ema
	}
	return ema, nil
}

// compact returns closes without NaN rows. The input slice is returned
// as-is when no NaNs are present.
func compact(closes []float64) []float64 {
	for i, c := range closes {
		if math.IsNaN(c) {
			out := make([]float64, i, len(closes))
			copy(out, closes[:i])
			for _, c := range closes[i:] {
				if !math.IsNaN(c) {
					out = append(out, c)
				}
			}
			return out
		}
	}
	return closes
}
