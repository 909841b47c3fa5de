package flex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/flextime/pkg/dateutil"
)

func TestRunSingleWorkingDay(t *testing.T) {
	// 2023-06-01 is a Thursday
	day := dateutil.Date(2023, time.June, 1)
	r, err := NewDateRange(day, false, day.AddDate(0, 0, 1))
	require.NoError(t, err)

	entries := WorkEntries{}
	entries.Add(day, 500)

	report := Run(Params{
		Range:        r,
		Schedule:     UniformSchedule(480, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
		WorkEntries:  entries,
		StartBalance: 100,
	})

	assert.Equal(t, 120, report.Balance)
	assert.Equal(t, 1, report.WorkingDays)
	assert.Equal(t, 0, report.Weekends)
	assert.Equal(t, 0, report.DaysOff)
	assert.Equal(t, 0, report.PublicHolidays)
	assert.Equal(t, 480, report.ExpectedMinutes)
	assert.Equal(t, 500, report.WorkedMinutes)
	require.NotNil(t, report.LongestDay)
	assert.Equal(t, day, report.LongestDay.Date)
}

func TestRunHolidayThatIsAlsoDayOff(t *testing.T) {
	day := dateutil.Date(2023, time.December, 6) // Wednesday
	entries := WorkEntries{}
	entries.Add(day, 60)

	report := Run(Params{
		Range:       DateRange{Start: day, End: day},
		Holidays:    NewDateSet(day),
		DaysOff:     NewDateSet(day),
		Schedule:    DefaultSchedule(),
		WorkEntries: entries,
	})

	assert.Equal(t, 1, report.PublicHolidays)
	assert.Equal(t, 0, report.DaysOff)
	assert.Equal(t, 60, report.Balance)
	require.Len(t, report.Days, 1)
	assert.Equal(t, PublicHoliday, report.Days[0].Category)
	assert.Equal(t, 60, report.Days[0].Delta)
}

func TestRunEmptyRange(t *testing.T) {
	today := dateutil.Date(2024, time.October, 1)
	r, err := NewDateRange(today, false, today)
	require.NoError(t, err)
	require.Equal(t, 0, r.Len())

	entries := WorkEntries{}
	entries.Add(today, 300)

	report := Run(Params{
		Range:        r,
		Schedule:     DefaultSchedule(),
		WorkEntries:  entries,
		StartBalance: -42,
	})

	assert.Equal(t, -42, report.Balance)
	assert.Equal(t, 0, report.TotalDays())
	for _, c := range Categories {
		assert.Equal(t, 0, report.Count(c), c.String())
	}
	assert.Empty(t, report.Days)
	assert.Nil(t, report.LongestDay)
	assert.Empty(t, report.CoverageGaps)
}

func TestRunCountsSumToRangeLength(t *testing.T) {
	r, err := NewDateRange(MinStartDate, true, dateutil.Date(2024, time.June, 30))
	require.NoError(t, err)

	holidays := NewDateSet(
		dateutil.Date(2023, time.January, 6),
		dateutil.Date(2023, time.December, 25),
		dateutil.Date(2024, time.May, 1),
	)
	daysOff := NewDateSet()
	daysOff.AddRange(dateutil.Date(2023, time.July, 3), dateutil.Date(2023, time.July, 28))
	daysOff.AddRange(dateutil.Date(2023, time.December, 24), dateutil.Date(2023, time.December, 27))

	report := Run(Params{
		Range:    r,
		Holidays: holidays,
		DaysOff:  daysOff,
		Schedule: DefaultSchedule(),
	})

	assert.Equal(t, r.Len(), report.TotalDays())
	assert.Len(t, report.Days, r.Len())
	assert.Equal(t, 3, report.PublicHolidays)
	// weekends inside a day-off range count as days off, Dec 25 stays a holiday
	assert.Equal(t, 26+3, report.DaysOff)
	assert.Equal(t, -report.ExpectedMinutes, report.Balance)
}

func TestRunIsIdempotent(t *testing.T) {
	r := DateRange{Start: dateutil.Date(2024, time.January, 1), End: dateutil.Date(2024, time.February, 15)}
	entries := WorkEntries{}
	entries.Add(dateutil.Date(2024, time.January, 2), 470)
	entries.Add(dateutil.Date(2024, time.January, 6), 90)
	p := Params{
		Range:        r,
		Holidays:     NewDateSet(dateutil.Date(2024, time.January, 1)),
		DaysOff:      NewDateSet(dateutil.Date(2024, time.January, 3)),
		Schedule:     DefaultSchedule(),
		WorkEntries:  entries,
		StartBalance: 10,
	}

	first := Run(p)
	second := Run(p)

	assert.Equal(t, first, second)
}

func TestRunIgnoresEntriesOutsideRange(t *testing.T) {
	saturday := dateutil.Date(2024, time.March, 2)
	entries := WorkEntries{}
	entries.Add(saturday.AddDate(0, 0, -1), 600)
	entries.Add(saturday, 45)
	entries.Add(saturday.AddDate(0, 0, 1), 600)

	report := Run(Params{
		Range:       DateRange{Start: saturday, End: saturday},
		Schedule:    DefaultSchedule(),
		WorkEntries: entries,
	})

	assert.Equal(t, 45, report.Balance)
	assert.Equal(t, 1, report.Weekends)
}

func TestRunCoverageGaps(t *testing.T) {
	r := DateRange{Start: dateutil.Date(2022, time.December, 1), End: dateutil.Date(2027, time.January, 10)}

	tests := []struct {
		name     string
		coverage []Coverage
		want     []CoverageGap
	}{
		{
			name:     "fully covered",
			coverage: []Coverage{{Source: "holidays", From: r.Start, To: r.End}},
			want:     nil,
		},
		{
			name:     "missing both ends",
			coverage: []Coverage{{Source: "holidays", From: dateutil.Date(2023, time.January, 1), To: dateutil.Date(2026, time.December, 31)}},
			want: []CoverageGap{
				{Source: "holidays", From: dateutil.Date(2022, time.December, 1), To: dateutil.Date(2022, time.December, 31)},
				{Source: "holidays", From: dateutil.Date(2027, time.January, 1), To: dateutil.Date(2027, time.January, 10)},
			},
		},
		{
			name:     "disjoint",
			coverage: []Coverage{{Source: "holidays", From: dateutil.Date(2030, time.January, 1), To: dateutil.Date(2030, time.December, 31)}},
			want:     []CoverageGap{{Source: "holidays", From: r.Start, To: r.End}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Run(Params{Range: r, Schedule: DefaultSchedule(), Coverage: tt.coverage})
			assert.Equal(t, tt.want, report.CoverageGaps)
			assert.Equal(t, r.Len(), report.TotalDays(), "gaps must not drop dates")
		})
	}
}

func TestCoverageGapDays(t *testing.T) {
	gap := CoverageGap{Source: "holidays", From: dateutil.Date(2027, time.January, 1), To: dateutil.Date(2027, time.January, 10)}
	assert.Equal(t, 10, gap.Days())
	assert.Equal(t, "holidays has no data for 2027-01-01..2027-01-10", gap.String())
}
