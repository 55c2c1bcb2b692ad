package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Period is a closed time interval [From, To] used by consumption queries.
type Period struct {
	From time.Time
	To   time.Time
}

// endOfDay is the last whole second of the day containing t.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TodayPeriod covers midnight of now's day up to now.
func TodayPeriod(now time.Time) Period {
	return Period{From: startOfDay(now), To: now}
}

// PresetPeriod covers the last n days ending now, starting at midnight.
func PresetPeriod(now time.Time, days int) Period {
	return Period{From: startOfDay(now.AddDate(0, 0, -days)), To: now}
}

// LastWeekPeriod covers the 7 days before now, starting at midnight.
func LastWeekPeriod(now time.Time) Period {
	return PresetPeriod(now, 7)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &RangeError{Msg: "Ensure the string exactly matches the format 'YYYY-MM-DD'."}
	}
	return t, nil
}

// ResolvePeriod validates a start/end date pair against now. A start equal to
// the end covers that whole day; an end equal to today stops at now.
func ResolvePeriod(start, end string, now time.Time) (Period, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Period{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Period{}, err
	}
	s = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, now.Location())
	e = time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, now.Location())
	today := startOfDay(now)

	switch {
	case s.After(e):
		return Period{}, &RangeError{Msg: "Start date cannot be after end date."}
	case s.After(today):
		return Period{}, &RangeError{Msg: "Start date cannot be in the future."}
	case e.After(today):
		return Period{}, &RangeError{Msg: "End date cannot be in the future."}
	}

	p := Period{From: s, To: e}
	if s.Equal(e) {
		p.To = endOfDay(e)
	}
	if e.Equal(today) {
		p.To = now
	}
	return p, nil
}

// ResolvePresetOrRange applies a numeric preset (last N days) when given,
// falling back to an explicit start/end range.
func ResolvePresetOrRange(preset, start, end string, now time.Time) (Period, error) {
	if preset != "" {
		if n, err := strconv.Atoi(preset); err == nil && n >= 0 {
			return PresetPeriod(now, n), nil
		}
	}
	return ResolvePeriod(start, end, now)
}

// QuarterPeriod returns the bounds of a calendar quarter, clipped to now. A
// quarter that has not started yet is an error.
func QuarterPeriod(quarter, year int, now time.Time) (Period, error) {
	if quarter < 1 || quarter > 4 {
		return Period{}, &RangeError{Msg: "Invalid quarter."}
	}
	first := time.Month(3*(quarter-1) + 1)
	from := time.Date(year, first, 1, 0, 0, 0, 0, now.Location())
	to := endOfDay(from.AddDate(0, 3, -1))
	if from.After(now) {
		return Period{}, &RangeError{Msg: "no available data yet"}
	}
	if to.After(now) {
		to = now
	}
	return Period{From: from, To: to}, nil
}

// String formats the period for logs.
func (p Period) String() string {
	return fmt.Sprintf("%s..%s", p.From.Format(time.DateTime), p.To.Format(time.DateTime))
}
