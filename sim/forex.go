package sim

import "math"

// marginRequired is the margin held for a position of the given signed
// units, converted into the account currency with the account-vs-base rate.
func marginRequired(units, accountVsBase, leverage float64) float64 {
	return math.Abs(units) * accountVsBase / leverage
}

// MarginAvailable is the net asset value left after margin in use.
func MarginAvailable(nav, marginUsed float64) float64 {
	return nav - marginUsed
}

// MarginCall reports whether the account is in a margin call: margin is in
// use and the net asset value no longer covers it.
func MarginCall(nav, marginUsed float64) bool {
	return marginUsed > 0 && nav <= marginUsed
}
