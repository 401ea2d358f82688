package tracker

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the calendar-day format used for grouping and labels.
const DayLayout = "2006-01-02"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDate normalizes user input into a UTC timestamp.
// A blank value means today (the UTC calendar day of now) at midnight.
// Date-only input ("2024-01-01") becomes that day at 00:00 UTC; timestamps
// without a zone are read as UTC.
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StartOfDay(now), nil
	}
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want YYYY-MM-DD or RFC 3339)", s)
}

// StartOfDay truncates t to midnight of its UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Day returns the UTC calendar day of t as YYYY-MM-DD.
func Day(t time.Time) string {
	return t.UTC().Format(DayLayout)
}
