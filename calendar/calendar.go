// Package calendar computes forex trading sessions.
//
// The forex market runs a rolling 24-hour day that closes 17:00 New York
// time and opens 17:00 the previous day. Weekends plus New Year's Day and
// Christmas (observed the following Monday when they land on a weekend) are
// non-trading. All returned session times are UTC.
package calendar

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidTimeSpec is returned for unusable start/end inputs.
var ErrInvalidTimeSpec = errors.New("calendar: invalid time spec")

const referenceZone = "America/New_York"

// Session is one contiguous trading window. End is the conceptual next open
// minus one second, so sessions at a given frequency are contiguous and never
// overlap.
type Session struct {
	Start time.Time
	End   time.Time
}

var (
	nyOnce sync.Once
	nyLoc  *time.Location
	nyErr  error
)

func newYork() (*time.Location, error) {
	nyOnce.Do(func() {
		nyLoc, nyErr = time.LoadLocation(referenceZone)
	})
	return nyLoc, nyErr
}

// TradingSessions returns the trading sessions between start and end at the
// given frequency, ascending. An in-range request with no trading days yields
// an empty slice, not an error.
//
// Zero start or end values are rejected with ErrInvalidTimeSpec; any other
// time.Time is treated as the absolute instant it names (a time.Time carries
// its own location, so there is no naive-time ambiguity to resolve).
func TradingSessions(start, end time.Time, freq DataFrequency) ([]Session, error) {
	if !freq.Valid() {
		return nil, fmt.Errorf("%w: %d seconds", ErrInvalidFrequency, int64(freq))
	}
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: zero start or end", ErrInvalidTimeSpec)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s", ErrInvalidTimeSpec, end, start)
	}

	loc, err := newYork()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", referenceZone, err)
	}

	s := start.In(loc)
	e := end.In(loc)

	switch freq {
	case D:
		return dailySessions(s, e, loc), nil
	case W:
		return weeklySessions(dailySessions(s, e.AddDate(0, 0, 1), loc), start, end, loc), nil
	default:
		// A sub-day query can land inside the trading day that opens 17:00
		// on the end date, so enumerate one extra day; the fully-inside
		// filters trim the boundary windows.
		return intradaySessions(dailySessions(s, e.AddDate(0, 0, 1), loc), start, end, freq), nil
	}
}

// dailySessions returns one session per business day whose date falls in
// [s, e], excluding observed holidays. The session for day d opens 17:00 the
// previous day and ends one second before 17:00 on d.
func dailySessions(s, e time.Time, loc *time.Location) []Session {
	sessions := []Session{}

	day := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	last := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, loc)

	for !day.After(last) {
		if isTradingDay(day) {
			nextOpen := time.Date(day.Year(), day.Month(), day.Day(), 17, 0, 0, 0, loc)
			open := nextOpen.AddDate(0, 0, -1)
			sessions = append(sessions, Session{
				Start: open.UTC(),
				End:   nextOpen.Add(-time.Second).UTC(),
			})
		}
		day = day.AddDate(0, 0, 1)
	}
	return sessions
}

func isTradingDay(day time.Time) bool {
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !isHoliday(day)
}

// isHoliday reports whether day is observed New Year's Day or Christmas.
func isHoliday(day time.Time) bool {
	newYear := observed(time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location()))
	christmas := observed(time.Date(day.Year(), time.December, 25, 0, 0, 0, 0, day.Location()))
	return sameDate(day, newYear) || sameDate(day, christmas)
}

// observed shifts a holiday landing on Saturday or Sunday to the following
// Monday.
func observed(holiday time.Time) time.Time {
	switch holiday.Weekday() {
	case time.Saturday:
		return holiday.AddDate(0, 0, 2)
	case time.Sunday:
		return holiday.AddDate(0, 0, 1)
	}
	return holiday
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// intradaySessions subdivides each daily session into contiguous fixed-length
// windows. Only windows fully inside [qs, qe] survive; boundary windows that
// partially overlap the query range are dropped wholesale.
func intradaySessions(daily []Session, qs, qe time.Time, freq DataFrequency) []Session {
	dur := freq.Duration()
	sessions := []Session{}

	for _, day := range daily {
		for open := day.Start; !open.After(day.End); open = open.Add(dur) {
			close := open.Add(dur - time.Second)
			if open.Before(qs) || close.After(qe) {
				continue
			}
			sessions = append(sessions, Session{Start: open, End: close})
		}
	}
	return sessions
}

// weeklySessions aggregates daily sessions into weekly ones ending Friday
// 17:00 New York. The nominal open is seven calendar days before the close;
// when a daylight-saving transition falls inside the week the open is shifted
// one hour so the session still spans five full trading days.
func weeklySessions(daily []Session, qs, qe time.Time, loc *time.Location) []Session {
	var closes []time.Time
	seen := make(map[int64]bool)

	for _, day := range daily {
		friday := nextFriday(day.Start.In(loc))
		close := time.Date(friday.Year(), friday.Month(), friday.Day(), 17, 0, 0, 0, loc)
		if !seen[close.Unix()] {
			seen[close.Unix()] = true
			closes = append(closes, close)
		}
	}

	sessions := []Session{}
	for _, close := range closes {
		open := close.AddDate(0, 0, -7)
		switch {
		case !open.IsDST() && close.IsDST():
			open = open.Add(time.Hour)
		case open.IsDST() && !close.IsDST():
			open = open.Add(-time.Hour)
		}
		end := close.Add(-time.Second)
		if open.Before(qs) || end.After(qe) {
			continue
		}
		sessions = append(sessions, Session{Start: open.UTC(), End: end.UTC()})
	}
	return sessions
}

// nextFriday returns the Friday on or after t's date.
func nextFriday(t time.Time) time.Time {
	days := (int(time.Friday) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, days)
}
