package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFrequency is returned when a frequency token is not recognized.
var ErrInvalidFrequency = errors.New("calendar: invalid data frequency")

// DataFrequency is a bar granularity. The underlying value is the bar
// duration in seconds, so frequencies have a total ordering: coarser
// frequencies compare greater.
type DataFrequency int64

const (
	M1  DataFrequency = 60
	M2  DataFrequency = 2 * M1
	M4  DataFrequency = 4 * M1
	M5  DataFrequency = 5 * M1
	M10 DataFrequency = 10 * M1
	M15 DataFrequency = 15 * M1
	M30 DataFrequency = 30 * M1
	H1  DataFrequency = 60 * M1
	H2  DataFrequency = 2 * H1
	H3  DataFrequency = 3 * H1
	H4  DataFrequency = 4 * H1
	H6  DataFrequency = 6 * H1
	H8  DataFrequency = 8 * H1
	H12 DataFrequency = 12 * H1
	// D is one rolling forex day, closing 17:00 New York.
	D DataFrequency = 24 * H1
	// W covers five trading days, closing Friday 17:00 New York.
	W DataFrequency = 5 * D
)

var tokens = map[string]DataFrequency{
	"M1": M1, "M2": M2, "M4": M4, "M5": M5, "M10": M10, "M15": M15, "M30": M30,
	"H1": H1, "H2": H2, "H3": H3, "H4": H4, "H6": H6, "H8": H8, "H12": H12,
	"D": D, "W": W,
}

// ParseFrequency maps a frequency token such as "M1", "H4", "D" or "W" to its
// DataFrequency. Unknown tokens return ErrInvalidFrequency.
func ParseFrequency(token string) (DataFrequency, error) {
	f, ok := tokens[token]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrequency, token)
	}
	return f, nil
}

// Frequencies returns all supported frequencies in ascending duration order.
func Frequencies() []DataFrequency {
	return []DataFrequency{M1, M2, M4, M5, M10, M15, M30, H1, H2, H3, H4, H6, H8, H12, D, W}
}

func (f DataFrequency) Valid() bool {
	for _, known := range Frequencies() {
		if f == known {
			return true
		}
	}
	return false
}

// Seconds returns the bar duration in seconds.
func (f DataFrequency) Seconds() int64 { return int64(f) }

// Duration returns the bar duration as an absolute time.Duration.
func (f DataFrequency) Duration() time.Duration { return time.Duration(f) * time.Second }

func (f DataFrequency) String() string {
	switch {
	case f == W:
		return "W"
	case f == D:
		return "D"
	case f >= H1 && f%H1 == 0:
		return fmt.Sprintf("H%d", f/H1)
	case f >= M1 && f%M1 == 0:
		return fmt.Sprintf("M%d", f/M1)
	}
	return fmt.Sprintf("DataFrequency(%d)", int64(f))
}

// Bucket returns the canonical resampling bucket descriptor for the
// frequency, e.g. "5min", "4h" or "W-FRI".
func (f DataFrequency) Bucket() string {
	switch {
	case f == W:
		return "W-FRI"
	case f == D:
		return "24h"
	case f >= H1 && f%H1 == 0:
		return fmt.Sprintf("%dh", f/H1)
	case f >= M1 && f%M1 == 0:
		return fmt.Sprintf("%dmin", f/M1)
	}
	return ""
}
