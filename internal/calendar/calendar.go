package calendar

import (
	"context"
	"time"

	"github.com/username/flextime/internal/flex"
)

// Holiday represents a public holiday
type Holiday struct {
	Date time.Time
	Name string
}

// HolidayList is the answer of a calendar for a date range.
// From..To is the part of the range the source actually has data for.
type HolidayList struct {
	Source   string
	From     time.Time
	To       time.Time
	Holidays []Holiday
}

// Dates returns the holiday dates as a set
func (l *HolidayList) Dates() flex.DateSet {
	set := flex.NewDateSet()
	for _, h := range l.Holidays {
		set.Add(h.Date)
	}
	return set
}

// Coverage returns the span the list is authoritative for
func (l *HolidayList) Coverage() flex.Coverage {
	return flex.Coverage{Source: l.Source + " holidays", From: l.From, To: l.To}
}

// Calendar interface for looking up public holidays
type Calendar interface {
	// Holidays returns the holidays between from and to inclusive, in date order
	Holidays(ctx context.Context, from, to time.Time) (*HolidayList, error)
}
