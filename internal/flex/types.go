package flex

import (
	"time"

	"github.com/username/flextime/pkg/dateutil"
)

// Category represents how a calendar day counts towards the balance
type Category int

const (
	WorkingDay Category = iota + 1
	Weekend
	DayOff
	PublicHoliday
)

// Categories lists every category in report order
var Categories = []Category{WorkingDay, Weekend, DayOff, PublicHoliday}

func (c Category) String() string {
	switch c {
	case WorkingDay:
		return "working day"
	case Weekend:
		return "weekend"
	case DayOff:
		return "day off"
	case PublicHoliday:
		return "public holiday"
	default:
		return "unknown"
	}
}

// CalendarDay is one classified date
type CalendarDay struct {
	Date     time.Time
	Category Category
}

// DateSet is a set of calendar dates. Keys are normalized to UTC midnight.
type DateSet map[time.Time]struct{}

// NewDateSet creates a set holding the given dates
func NewDateSet(dates ...time.Time) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// Add inserts a single date
func (s DateSet) Add(date time.Time) {
	s[dateutil.Normalize(date)] = struct{}{}
}

// AddRange inserts every date from..to inclusive. A reversed range adds only from.
func (s DateSet) AddRange(from, to time.Time) {
	from, to = dateutil.Normalize(from), dateutil.Normalize(to)
	if to.Before(from) {
		to = from
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		s[d] = struct{}{}
	}
}

// Remove deletes every date from..to inclusive
func (s DateSet) Remove(from, to time.Time) {
	from, to = dateutil.Normalize(from), dateutil.Normalize(to)
	for d := range s {
		if !d.Before(from) && !d.After(to) {
			delete(s, d)
		}
	}
}

// Contains reports whether the date is in the set
func (s DateSet) Contains(date time.Time) bool {
	_, ok := s[dateutil.Normalize(date)]
	return ok
}

// Len returns the number of dates
func (s DateSet) Len() int {
	return len(s)
}

// WorkEntries maps a calendar date to the minutes logged on it
type WorkEntries map[time.Time]int

// Add accumulates minutes on a date
func (w WorkEntries) Add(date time.Time, minutes int) {
	w[dateutil.Normalize(date)] += minutes
}

// Minutes returns the minutes logged on a date, 0 when nothing was logged
func (w WorkEntries) Minutes(date time.Time) int {
	return w[dateutil.Normalize(date)]
}

// FirstDate returns the earliest date with logged minutes
func (w WorkEntries) FirstDate() (time.Time, bool) {
	var first time.Time
	found := false
	for d, m := range w {
		if m <= 0 {
			continue
		}
		if !found || d.Before(first) {
			first = d
			found = true
		}
	}
	return first, found
}
