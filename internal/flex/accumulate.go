package flex

import "time"

// DayResult is the contribution of one date to the balance
type DayResult struct {
	Date            time.Time
	Category        Category
	ExpectedMinutes int
	ActualMinutes   int
	Delta           int
}

// Accumulate folds classified days into the balance in the order given.
// Working days add actual minus expected minutes, every other category adds
// the actual minutes. Dates without entries count as 0 minutes.
func Accumulate(startBalance int, days []CalendarDay, entries WorkEntries, schedule Schedule) (int, []DayResult) {
	balance := startBalance
	results := make([]DayResult, 0, len(days))

	for _, day := range days {
		r := DayResult{
			Date:          day.Date,
			Category:      day.Category,
			ActualMinutes: entries.Minutes(day.Date),
		}
		if day.Category == WorkingDay {
			r.ExpectedMinutes = schedule.ExpectedMinutes(day.Date)
		}
		r.Delta = r.ActualMinutes - r.ExpectedMinutes

		balance += r.Delta
		results = append(results, r)
	}

	return balance, results
}
