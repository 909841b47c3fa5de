package flex

import (
	"time"

	"github.com/username/flextime/pkg/dateutil"
)

// DefaultDayMinutes is a 7.5 hour working day
const DefaultDayMinutes = 450

// Override replaces the expected minutes of scheduled working days within From..To
type Override struct {
	From          time.Time
	To            time.Time
	MinutesPerDay int
}

// Schedule holds the expected working minutes per weekday and date-range overrides
type Schedule struct {
	weekdays  [7]int
	overrides []Override
}

// NewSchedule creates a schedule from minutes per weekday. Missing weekdays expect no work.
func NewSchedule(perWeekday map[time.Weekday]int) Schedule {
	var s Schedule
	for wd, minutes := range perWeekday {
		if minutes > 0 {
			s.weekdays[wd] = minutes
		}
	}
	return s
}

// DefaultSchedule expects DefaultDayMinutes Monday to Friday
func DefaultSchedule() Schedule {
	return UniformSchedule(DefaultDayMinutes,
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
}

// UniformSchedule expects the same minutes on each of the given weekdays
func UniformSchedule(minutes int, days ...time.Weekday) Schedule {
	perWeekday := make(map[time.Weekday]int, len(days))
	for _, wd := range days {
		perWeekday[wd] = minutes
	}
	return NewSchedule(perWeekday)
}

// WithOverrides returns a copy of the schedule with extra overrides appended.
// The first override covering a date wins.
func (s Schedule) WithOverrides(overrides ...Override) Schedule {
	out := s
	out.overrides = make([]Override, 0, len(s.overrides)+len(overrides))
	out.overrides = append(out.overrides, s.overrides...)
	for _, o := range overrides {
		out.overrides = append(out.overrides, Override{
			From:          dateutil.Normalize(o.From),
			To:            dateutil.Normalize(o.To),
			MinutesPerDay: o.MinutesPerDay,
		})
	}
	return out
}

// IsWorkingWeekday reports whether the weekday expects any work
func (s Schedule) IsWorkingWeekday(wd time.Weekday) bool {
	return s.weekdays[wd] > 0
}

// ExpectedMinutes returns the expected minutes for a date.
// Overrides only apply to weekdays the schedule expects work on.
func (s Schedule) ExpectedMinutes(date time.Time) int {
	minutes := s.weekdays[date.Weekday()]
	if minutes == 0 {
		return 0
	}

	d := dateutil.Normalize(date)
	for _, o := range s.overrides {
		if !d.Before(o.From) && !d.After(o.To) {
			return o.MinutesPerDay
		}
	}
	return minutes
}

// IsZero reports whether the schedule expects no work on any weekday
func (s Schedule) IsZero() bool {
	for _, m := range s.weekdays {
		if m > 0 {
			return false
		}
	}
	return true
}
