package timemanager

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/username/flextime/internal/clockify"
	"github.com/username/flextime/internal/config"
	"github.com/username/flextime/internal/flex"
	"github.com/username/flextime/pkg/dateutil"
)

// PolicySummary counts days off of one time-off policy
type PolicySummary struct {
	Policy   string
	Taken    int // days off inside the calculated range
	Upcoming int // approved working days off after the range
}

// daysOff is the resolved set of days off with the policy of each date
type daysOff struct {
	dates  flex.DateSet
	policy map[time.Time]string
}

// resolveDaysOff expands approved time-off requests into dates, minus ignored items.
// Partial days count as whole days off.
func (m *Manager) resolveDaysOff(requests []clockify.TimeOffRequest, settings *config.UserSettings) daysOff {
	out := daysOff{
		dates:  flex.NewDateSet(),
		policy: make(map[time.Time]string),
	}

	for _, r := range requests {
		if r.Status.StatusType != clockify.TimeOffStatusApproved {
			continue
		}
		if r.TimeOffPeriod.HalfDay || r.TimeUnit == clockify.TimeUnitHours {
			m.logger.Warn("Partial day off counted as a full day",
				zap.String("request", r.ID),
				zap.String("policy", r.PolicyName))
		}

		from, to := r.Dates()
		for d := from; !d.After(to); d = dateutil.AddDays(d, 1) {
			if m.ignoredTimeOff(settings, r.PolicyName, d) {
				continue
			}
			out.dates.Add(d)
			if _, ok := out.policy[d]; !ok {
				out.policy[d] = r.PolicyName
			}
		}
	}

	return out
}

func (m *Manager) ignoredTimeOff(settings *config.UserSettings, policy string, date time.Time) bool {
	if settings == nil {
		return false
	}
	for _, item := range settings.IgnoreItems {
		if !item.MatchesTimeOff(policy) {
			continue
		}
		from, to, err := item.Dates()
		if err != nil {
			continue
		}
		if !date.Before(from) && !date.After(to) {
			m.logger.Debug("Ignoring day off",
				zap.String("item", item.Name),
				zap.String("date", dateutil.FormatDate(date)))
			return true
		}
	}
	return false
}

// summarize counts taken days off per policy from the report, and upcoming
// ones after the range that fall on scheduled working days
func (d daysOff) summarize(report flex.Report, schedule flex.Schedule, holidays flex.DateSet) []PolicySummary {
	byPolicy := make(map[string]*PolicySummary)
	get := func(policy string) *PolicySummary {
		if policy == "" {
			policy = "Time off"
		}
		s, ok := byPolicy[policy]
		if !ok {
			s = &PolicySummary{Policy: policy}
			byPolicy[policy] = s
		}
		return s
	}

	for _, day := range report.Days {
		if day.Category == flex.DayOff {
			get(d.policy[day.Date]).Taken++
		}
	}

	for date, policy := range d.policy {
		if !date.After(report.Range.End) {
			continue
		}
		if holidays.Contains(date) || !schedule.IsWorkingWeekday(date.Weekday()) {
			continue
		}
		get(policy).Upcoming++
	}

	summaries := make([]PolicySummary, 0, len(byPolicy))
	for _, s := range byPolicy {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Policy < summaries[j].Policy
	})
	return summaries
}
