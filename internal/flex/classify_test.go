package flex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/username/flextime/pkg/dateutil"
)

func TestClassify(t *testing.T) {
	// 2024-05-06 is a Monday
	monday := dateutil.Date(2024, time.May, 6)
	saturday := dateutil.Date(2024, time.May, 11)
	holidayMonday := dateutil.Date(2024, time.May, 13)
	offTuesday := dateutil.Date(2024, time.May, 14)
	bothWednesday := dateutil.Date(2024, time.May, 15)
	holidaySaturday := dateutil.Date(2024, time.May, 18)
	offSunday := dateutil.Date(2024, time.May, 19)

	holidays := NewDateSet(holidayMonday, bothWednesday, holidaySaturday)
	daysOff := NewDateSet(offTuesday, bothWednesday, offSunday)
	schedule := DefaultSchedule()

	tests := []struct {
		name string
		date time.Time
		want Category
	}{
		{"plain monday", monday, WorkingDay},
		{"plain saturday", saturday, Weekend},
		{"holiday on a weekday", holidayMonday, PublicHoliday},
		{"day off on a weekday", offTuesday, DayOff},
		{"holiday wins over day off", bothWednesday, PublicHoliday},
		{"holiday wins over weekend", holidaySaturday, PublicHoliday},
		{"day off wins over weekend", offSunday, DayOff},
		{"clock part is ignored", time.Date(2024, time.May, 14, 16, 0, 0, 0, time.UTC), DayOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.date, holidays, daysOff, schedule)
			assert.Equal(t, tt.want, got, "Classify(%s)", tt.date.Format("2006-01-02 Mon"))
		})
	}
}

func TestClassifyFollowsSchedule(t *testing.T) {
	// four-day week, Friday off
	schedule := UniformSchedule(480, time.Monday, time.Tuesday, time.Wednesday, time.Thursday)
	friday := dateutil.Date(2024, time.May, 10)
	sunday := dateutil.Date(2024, time.May, 12)

	assert.Equal(t, Weekend, Classify(friday, nil, nil, schedule))
	assert.Equal(t, Weekend, Classify(sunday, nil, nil, schedule))
	assert.Equal(t, WorkingDay, Classify(friday, nil, nil, DefaultSchedule()))
}

func TestClassifyIsTotalAndExclusive(t *testing.T) {
	r := DateRange{Start: dateutil.Date(2024, time.January, 1), End: dateutil.Date(2024, time.December, 31)}
	holidays := NewDateSet(dateutil.Date(2024, time.January, 1), dateutil.Date(2024, time.December, 25))
	daysOff := NewDateSet()
	daysOff.AddRange(dateutil.Date(2024, time.July, 1), dateutil.Date(2024, time.July, 26))

	for d := range r.All() {
		c := Classify(d, holidays, daysOff, DefaultSchedule())
		assert.Contains(t, Categories, c, "date %s", dateutil.FormatDate(d))
	}
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "working day", WorkingDay.String())
	assert.Equal(t, "weekend", Weekend.String())
	assert.Equal(t, "day off", DayOff.String())
	assert.Equal(t, "public holiday", PublicHoliday.String())
	assert.Equal(t, "unknown", Category(0).String())
}

func TestDateSet(t *testing.T) {
	s := NewDateSet()
	s.AddRange(dateutil.Date(2024, time.December, 30), dateutil.Date(2025, time.January, 2))

	assert.Equal(t, 4, s.Len())
	assert.True(t, s.Contains(dateutil.Date(2024, time.December, 31)))
	assert.True(t, s.Contains(time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)))
	assert.False(t, s.Contains(dateutil.Date(2025, time.January, 3)))

	s.Remove(dateutil.Date(2024, time.December, 31), dateutil.Date(2025, time.January, 1))
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Contains(dateutil.Date(2024, time.December, 31)))

	reversed := NewDateSet()
	reversed.AddRange(dateutil.Date(2024, time.May, 5), dateutil.Date(2024, time.May, 1))
	assert.Equal(t, 1, reversed.Len())

	var nilSet DateSet
	assert.False(t, nilSet.Contains(dateutil.Date(2024, time.May, 5)))
}

func TestScheduleExpectedMinutes(t *testing.T) {
	schedule := DefaultSchedule().WithOverrides(Override{
		From:          dateutil.Date(2024, time.June, 1),
		To:            dateutil.Date(2024, time.June, 30),
		MinutesPerDay: 240,
	})

	assert.Equal(t, 450, schedule.ExpectedMinutes(dateutil.Date(2024, time.May, 31)))
	assert.Equal(t, 240, schedule.ExpectedMinutes(dateutil.Date(2024, time.June, 3)))
	assert.Equal(t, 0, schedule.ExpectedMinutes(dateutil.Date(2024, time.June, 8)), "override must not apply to a weekend")
	assert.Equal(t, 450, schedule.ExpectedMinutes(dateutil.Date(2024, time.July, 1)))

	assert.Equal(t, 450, DefaultSchedule().ExpectedMinutes(dateutil.Date(2024, time.June, 3)), "WithOverrides must not modify the receiver")
	assert.True(t, NewSchedule(nil).IsZero())
	assert.False(t, DefaultSchedule().IsZero())
}
