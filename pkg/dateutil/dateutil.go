package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar date format used in config, flags and output
const DateLayout = "2006-01-02"

// Date returns the calendar date y-m-d as UTC midnight
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize strips the clock part of t and returns its calendar date as UTC midnight.
// The date is read in t's own location, no timezone conversion happens.
func Normalize(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// AddDays shifts a calendar date by n days
func AddDays(date time.Time, n int) time.Time {
	return Normalize(date).AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b (negative if b is before a)
func DaysBetween(a, b time.Time) int {
	return int(Normalize(b).Sub(Normalize(a)).Hours() / 24)
}

// FormatDate formats a calendar date as YYYY-MM-DD
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// ParseDate parses date string in various formats and returns the calendar date
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		DateLayout,
		"02.01.2006",
		"2006-01-02T15:04:05",
		time.RFC3339,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return Normalize(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q, expected YYYY-MM-DD", dateStr)
}

// Today returns the calendar date of now
func Today(now time.Time) time.Time {
	return Normalize(now)
}

// Yesterday returns the calendar date before now
func Yesterday(now time.Time) time.Time {
	return AddDays(now, -1)
}

// ParseWeekday parses an English weekday name such as "MONDAY" or "mon"
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if len(n) >= 3 {
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			full := strings.ToLower(wd.String())
			if n == full || n == full[:3] {
				return wd, nil
			}
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", name)
}
