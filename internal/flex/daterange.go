package flex

import (
	"iter"
	"time"

	"github.com/username/flextime/pkg/dateutil"
)

// MinStartDate is the earliest date a calculation may start on
var MinStartDate = dateutil.Date(2023, time.January, 1)

// DateRange is an inclusive range of calendar dates. End before Start is an empty range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds the range to evaluate: start through today when includeToday
// is set, through yesterday otherwise. A start after the end yields an empty range.
func NewDateRange(start time.Time, includeToday bool, today time.Time) (DateRange, error) {
	start = dateutil.Normalize(start)
	if start.Before(MinStartDate) {
		return DateRange{}, &InvalidRangeError{
			Start:  start,
			Reason: "must not be before " + dateutil.FormatDate(MinStartDate),
		}
	}

	end := dateutil.Today(today)
	if !includeToday {
		end = dateutil.Yesterday(today)
	}

	return DateRange{Start: start, End: end}, nil
}

// ParseStartDate parses a YYYY-MM-DD start date and checks it against MinStartDate
func ParseStartDate(input string) (time.Time, error) {
	start, err := time.Parse(dateutil.DateLayout, input)
	if err != nil {
		return time.Time{}, &InvalidRangeError{Input: input, Reason: "expected YYYY-MM-DD"}
	}
	if start.Before(MinStartDate) {
		return time.Time{}, &InvalidRangeError{
			Input:  input,
			Start:  start,
			Reason: "must not be before " + dateutil.FormatDate(MinStartDate),
		}
	}
	return start, nil
}

// Empty reports whether the range holds no dates
func (r DateRange) Empty() bool {
	return r.End.Before(r.Start)
}

// Len returns the number of dates in the range
func (r DateRange) Len() int {
	if r.Empty() {
		return 0
	}
	return dateutil.DaysBetween(r.Start, r.End) + 1
}

// Contains reports whether the date falls within the range
func (r DateRange) Contains(date time.Time) bool {
	d := dateutil.Normalize(date)
	return !d.Before(r.Start) && !d.After(r.End)
}

// All yields every date of the range in ascending order. It can be ranged over
// any number of times.
func (r DateRange) All() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Days materializes the range
func (r DateRange) Days() []time.Time {
	days := make([]time.Time, 0, r.Len())
	for d := range r.All() {
		days = append(days, d)
	}
	return days
}

func (r DateRange) String() string {
	if r.Empty() {
		return "empty"
	}
	return dateutil.FormatDate(r.Start) + ".." + dateutil.FormatDate(r.End)
}
