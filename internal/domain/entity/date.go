package entity

import (
	"fmt"
	"time"
)

// DateLayout is the zero-padded DD-MM-YYYY form used by the exchange API and chart labels
const DateLayout = "02-01-2006"

// FormatDate renders a date as DD-MM-YYYY
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DD-MM-YYYY date in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in DD-MM-YYYY format: %w", err)
	}
	return t, nil
}

// CalendarDate truncates t to midnight in its own location
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
