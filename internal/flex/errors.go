package flex

import (
	"errors"
	"fmt"
	"time"

	"github.com/username/flextime/pkg/dateutil"
)

// ErrInvalidRange is matched by every InvalidRangeError
var ErrInvalidRange = errors.New("invalid date range")

// InvalidRangeError reports a start date that cannot open a calculation range
type InvalidRangeError struct {
	Input  string    // raw input when the date could not be parsed
	Start  time.Time // parsed start date, zero if parsing failed
	Reason string
}

func (e *InvalidRangeError) Error() string {
	if e.Start.IsZero() {
		return fmt.Sprintf("invalid start date %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid start date %s: %s", dateutil.FormatDate(e.Start), e.Reason)
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}

// CoverageGap marks dates a reference source had no data for.
// It is advisory: the dates are still classified, as working days by default.
type CoverageGap struct {
	Source string
	From   time.Time
	To     time.Time
}

func (g CoverageGap) String() string {
	return fmt.Sprintf("%s has no data for %s..%s",
		g.Source, dateutil.FormatDate(g.From), dateutil.FormatDate(g.To))
}

// Days returns the number of dates in the gap
func (g CoverageGap) Days() int {
	return dateutil.DaysBetween(g.From, g.To) + 1
}
