package flex

import "time"

// Classify assigns a date exactly one category.
// Precedence: public holiday, day off, weekend, working day.
func Classify(date time.Time, holidays, daysOff DateSet, schedule Schedule) Category {
	switch {
	case holidays.Contains(date):
		return PublicHoliday
	case daysOff.Contains(date):
		return DayOff
	case !schedule.IsWorkingWeekday(date.Weekday()):
		return Weekend
	default:
		return WorkingDay
	}
}
