package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of snapshot dates in data files.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// DaysBetween returns the number of whole calendar days from one date to another.
// It is negative when to is before from.
func DaysBetween(from, to time.Time) int {
	from = BeginningOfDay(from)
	to = BeginningOfDay(to)
	return int(to.Sub(from).Hours() / 24)
}

// SnapshotAge returns how many days old a YYYY-MM-DD snapshot date is at now.
func SnapshotAge(asOf string, now time.Time) (int, error) {
	t, err := ParseDate(asOf)
	if err != nil {
		return 0, err
	}
	return DaysBetween(t, now), nil
}

// BeginningOfDay truncates a time to midnight UTC of its calendar date.
func BeginningOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
