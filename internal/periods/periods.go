// Package periods centralizes calendar bucketing for the reporting layer.
// Every aggregator derives its month and day boundaries from these helpers
// so the views can never disagree at a boundary.
package periods

import (
	"fmt"
	"time"
)

// KeyLayout is the wire format for a calendar-month bucket key.
const KeyLayout = "2006-01"

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth truncates t to the first day of its calendar month, UTC.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey returns the bucket key ("2006-01") for t's calendar month.
func MonthKey(t time.Time) string {
	return t.UTC().Format(KeyLayout)
}

// MonthRange returns the month starts covering [from, to] inclusive,
// ascending. The two bounds may fall anywhere inside their months.
func MonthRange(from, to time.Time) []time.Time {
	start := StartOfMonth(from)
	end := StartOfMonth(to)
	if end.Before(start) {
		return nil
	}
	months := make([]time.Time, 0, 12)
	for cursor := start; !cursor.After(end); cursor = cursor.AddDate(0, 1, 0) {
		months = append(months, cursor)
	}
	return months
}

// DaysBetween returns the whole days from a to b, never negative.
func DaysBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}

// ChangePct returns the percent change from previous to current, rounded to
// two decimals. A zero base yields 0 by policy, never a division error.
func ChangePct(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return Round2((current - previous) / previous * 100)
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	if v < 0 {
		return -Round2(-v)
	}
	scaled := v * 100
	return float64(int64(scaled+0.5)) / 100
}

// ParseWindow maps a period selector (7d, 30d, 90d, 1y) to its trailing
// duration in days.
func ParseWindow(period string) (int, error) {
	switch period {
	case "7d":
		return 7, nil
	case "30d", "":
		return 30, nil
	case "90d":
		return 90, nil
	case "1y":
		return 365, nil
	default:
		return 0, fmt.Errorf("unknown period %q", period)
	}
}
