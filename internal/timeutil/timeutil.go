// Package timeutil provides the day and week boundary arithmetic shared by
// every analytics computation. All functions take the location explicitly so
// a single aggregation run never mixes UTC days with local days.
package timeutil

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used on the wire
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a calendar date string cannot be parsed
var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses a calendar date and returns local midnight of that date in loc.
// RFC3339 timestamps are accepted as well; their calendar date in loc is used.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	if d, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		return d, nil
	}

	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return StartOfDay(ts, loc), nil
}

// DayBounds returns the instants of 00:00:00.000 and 23:59:59.999 of the given
// calendar date in loc, both expressed in UTC.
func DayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, end := BoundsOf(start, loc)
	return start, end, nil
}

// BoundsOf returns the UTC start and end instants of the local day containing t.
func BoundsOf(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start.UTC(), end.UTC()
}

// StartOfDay returns local midnight in loc of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// LocalDate formats the calendar date of t as seen in loc.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// WeekStart returns local midnight of the first day of the 7-day window
// containing t, where the window begins on firstDay.
func WeekStart(t time.Time, firstDay time.Weekday, loc *time.Location) time.Time {
	local := t.In(loc)
	diff := (int(local.Weekday()) - int(firstDay) + 7) % 7
	y, m, d := local.Date()
	return time.Date(y, m, d-diff, 0, 0, 0, 0, loc)
}

// ParseWeekStart maps a week-start convention name to its weekday.
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	default:
		return time.Sunday, fmt.Errorf("unsupported week start %q (use sunday or monday)", s)
	}
}

// WeekStartName is the inverse of ParseWeekStart.
func WeekStartName(d time.Weekday) string {
	if d == time.Monday {
		return "monday"
	}
	return "sunday"
}

// ClampToInterval restricts [start, end] to [lower, upper]. ok is false when the
// clamped interval is empty or inverted.
func ClampToInterval(start, end, lower, upper time.Time) (time.Time, time.Time, bool) {
	s, e := start, end
	if s.Before(lower) {
		s = lower
	}
	if e.After(upper) {
		e = upper
	}
	if !s.Before(e) {
		return time.Time{}, time.Time{}, false
	}
	return s, e, true
}

// MinutesBetween returns round((end-start) in ms / 60000).
// Callers guard against inverted intervals; negative input yields a negative result.
func MinutesBetween(start, end time.Time) int {
	ms := end.Sub(start).Milliseconds()
	return int(math.Round(float64(ms) / 60000))
}

// LoadLocation resolves an IANA zone name, returning fallback when name is
// empty or unknown.
func LoadLocation(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}
