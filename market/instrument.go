// Package market defines instruments and price bars.
package market

import (
	"fmt"
	"math"
	"strings"
)

// Instrument is a currency pair resolved from its identifier, e.g.
// "EUR_USD" -> base EUR, quote USD.
type Instrument struct {
	Name  string
	Base  string
	Quote string
}

// ParseInstrument splits a pair identifier into base and quote currency
// codes. The identifier must be two three-letter codes joined by an
// underscore.
func ParseInstrument(name string) (Instrument, error) {
	parts := strings.Split(name, "_")
	if len(parts) != 2 || len(parts[0]) != 3 || len(parts[1]) != 3 {
		return Instrument{}, fmt.Errorf("market: malformed instrument %q", name)
	}
	return Instrument{
		Name:  name,
		Base:  strings.ToUpper(parts[0]),
		Quote: strings.ToUpper(parts[1]),
	}, nil
}

// PairName joins two currency codes into a pair identifier.
func PairName(base, quote string) string {
	return base + "_" + quote
}

// PipLocation is the decimal exponent of one pip: -4 for most pairs,
// -2 for JPY quotes.
func (i Instrument) PipLocation() int {
	if i.Quote == "JPY" {
		return -2
	}
	return -4
}

// PipSize is the price increment of one pip, e.g. 0.0001 for EUR_USD and
// 0.01 for USD_JPY.
func (i Instrument) PipSize() float64 {
	return math.Pow(10, float64(i.PipLocation()))
}
