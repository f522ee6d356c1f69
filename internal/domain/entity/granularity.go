package entity

import (
	"fmt"
	"strings"
)

// Granularity selects how many calendar days a chart covers
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// DefaultGranularity is used when a caller does not pick a range
const DefaultGranularity = Weekly

// Points returns the fixed number of days covered. Ranges are day counts, not calendar periods.
func (g Granularity) Points() int {
	switch g {
	case Daily:
		return 1
	case Monthly:
		return 30
	case Yearly:
		return 365
	default:
		return 7
	}
}

// UsesTodayEndpoint reports whether snapshots come from the "today" endpoint instead of the
// date filter
func (g Granularity) UsesTodayEndpoint() bool {
	return g == Daily
}

// ParseGranularity accepts the canonical names plus the short day/week/month/year forms.
// An empty string yields DefaultGranularity.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultGranularity, nil
	case "daily", "day":
		return Daily, nil
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	case "yearly", "year":
		return Yearly, nil
	}
	return "", fmt.Errorf("unknown range %q", s)
}
