package flex

import (
	"time"

	"github.com/username/flextime/pkg/dateutil"
)

// Coverage is the span a reference source actually has data for
type Coverage struct {
	Source string
	From   time.Time
	To     time.Time
}

// Params is everything a calculation run needs. It is resolved once and not mutated.
type Params struct {
	Range        DateRange
	Holidays     DateSet
	DaysOff      DateSet
	Schedule     Schedule
	WorkEntries  WorkEntries
	StartBalance int
	Coverage     []Coverage
}

// Report is the outcome of a calculation run
type Report struct {
	Range           DateRange
	WorkingDays     int
	Weekends        int
	DaysOff         int
	PublicHolidays  int
	ExpectedMinutes int
	WorkedMinutes   int
	StartBalance    int
	Balance         int
	Days            []DayResult
	LongestDay      *DayResult
	CoverageGaps    []CoverageGap
}

// Count returns the number of days classified into c
func (r Report) Count(c Category) int {
	switch c {
	case WorkingDay:
		return r.WorkingDays
	case Weekend:
		return r.Weekends
	case DayOff:
		return r.DaysOff
	case PublicHoliday:
		return r.PublicHolidays
	default:
		return 0
	}
}

// TotalDays returns the number of evaluated dates
func (r Report) TotalDays() int {
	return r.WorkingDays + r.Weekends + r.DaysOff + r.PublicHolidays
}

// Run classifies every date of the range, folds the balance and tallies the categories
func Run(p Params) Report {
	report := Report{
		Range:        p.Range,
		StartBalance: p.StartBalance,
		Balance:      p.StartBalance,
		CoverageGaps: coverageGaps(p.Range, p.Coverage),
	}
	if p.Range.Empty() {
		return report
	}

	days := make([]CalendarDay, 0, p.Range.Len())
	for d := range p.Range.All() {
		days = append(days, CalendarDay{
			Date:     d,
			Category: Classify(d, p.Holidays, p.DaysOff, p.Schedule),
		})
	}

	report.Balance, report.Days = Accumulate(p.StartBalance, days, p.WorkEntries, p.Schedule)

	for i := range report.Days {
		day := &report.Days[i]
		switch day.Category {
		case WorkingDay:
			report.WorkingDays++
		case Weekend:
			report.Weekends++
		case DayOff:
			report.DaysOff++
		case PublicHoliday:
			report.PublicHolidays++
		}
		report.ExpectedMinutes += day.ExpectedMinutes
		report.WorkedMinutes += day.ActualMinutes

		if day.ActualMinutes > 0 && (report.LongestDay == nil || day.ActualMinutes > report.LongestDay.ActualMinutes) {
			longest := *day
			report.LongestDay = &longest
		}
	}

	return report
}

func coverageGaps(r DateRange, coverage []Coverage) []CoverageGap {
	if r.Empty() {
		return nil
	}

	var gaps []CoverageGap
	for _, c := range coverage {
		from, to := dateutil.Normalize(c.From), dateutil.Normalize(c.To)

		if to.Before(from) || to.Before(r.Start) || from.After(r.End) {
			gaps = append(gaps, CoverageGap{Source: c.Source, From: r.Start, To: r.End})
			continue
		}
		if r.Start.Before(from) {
			gaps = append(gaps, CoverageGap{Source: c.Source, From: r.Start, To: from.AddDate(0, 0, -1)})
		}
		if r.End.After(to) {
			gaps = append(gaps, CoverageGap{Source: c.Source, From: to.AddDate(0, 0, 1), To: r.End})
		}
	}
	return gaps
}
