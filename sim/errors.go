package sim

import "errors"

var (
	// ErrNoDataSet is returned when an account currency conversion has no
	// tradable pair in the data catalog, in either direction.
	ErrNoDataSet = errors.New("sim: no tradable pair for currency conversion")

	// ErrNoPriceData is returned when a price lookup lands on a minute with
	// no bar for an instrument the engine needs a price for.
	ErrNoPriceData = errors.New("sim: price data unavailable")
)

// tickScoped reports whether err only invalidates the current simulation
// minute rather than the whole run.
func tickScoped(err error) bool {
	return errors.Is(err, ErrNoDataSet) || errors.Is(err, ErrNoPriceData)
}
