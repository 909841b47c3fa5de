package report

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatMinutes formats minutes as "7h 30min", with a leading minus when negative
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}

	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%s%dh", sign, h)
	}
	return fmt.Sprintf("%s%dh %dmin", sign, h, m)
}

// FormatSignedMinutes is FormatMinutes with an explicit plus for positive values
func FormatSignedMinutes(minutes int) string {
	if minutes > 0 {
		return "+" + FormatMinutes(minutes)
	}
	return FormatMinutes(minutes)
}

// FormatDays expresses minutes in working days of dayMinutes, one decimal place.
// Returns an empty string when dayMinutes is not positive.
func FormatDays(minutes, dayMinutes int) string {
	if dayMinutes <= 0 {
		return ""
	}
	return decimal.NewFromInt(int64(minutes)).
		Div(decimal.NewFromInt(int64(dayMinutes))).
		StringFixed(1)
}
