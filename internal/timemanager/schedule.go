package timemanager

import (
	"time"

	"go.uber.org/zap"

	"github.com/username/flextime/internal/clockify"
	"github.com/username/flextime/internal/config"
	"github.com/username/flextime/internal/flex"
	"github.com/username/flextime/pkg/dateutil"
)

// buildSchedule combines the configured schedule, the member profile and the
// user's expected-hours overrides. It also returns the default minutes per day.
func (m *Manager) buildSchedule(profile *clockify.MemberProfile, settings *config.UserSettings) (flex.Schedule, int) {
	minutes := m.config.Schedule.DayMinutes()
	weekdays, err := m.config.Schedule.Weekdays()
	if err != nil {
		// Validated on load
		m.logger.Warn("Invalid working days, using default schedule", zap.Error(err))
		return flex.DefaultSchedule(), flex.DefaultDayMinutes
	}

	if profile != nil {
		minutes, weekdays = m.applyProfile(profile, minutes, weekdays)
	}

	schedule := flex.UniformSchedule(minutes, weekdays...)
	if schedule.IsZero() {
		m.logger.Warn("Schedule has no working days, every day counts as weekend")
	}
	if settings == nil {
		return schedule, minutes
	}

	overrides := make([]flex.Override, 0, len(settings.ExpectedWorkingHours))
	for _, exp := range settings.ExpectedWorkingHours {
		from, to, err := exp.Dates()
		if err != nil {
			continue
		}
		overrides = append(overrides, flex.Override{From: from, To: to, MinutesPerDay: exp.Minutes()})
		m.logger.Info("Expected hours override",
			zap.String("item", exp.Name),
			zap.String("from", dateutil.FormatDate(from)),
			zap.String("to", dateutil.FormatDate(to)),
			zap.Int("minutes_per_day", exp.Minutes()))
	}

	return schedule.WithOverrides(overrides...), minutes
}

// applyProfile takes capacity and working days from the member profile where they are usable
func (m *Manager) applyProfile(profile *clockify.MemberProfile, minutes int, weekdays []time.Weekday) (int, []time.Weekday) {
	if profile.WorkCapacity != "" {
		capacity, err := clockify.ParseISO8601Duration(profile.WorkCapacity)
		switch {
		case err != nil:
			m.logger.Warn("Invalid work capacity in member profile",
				zap.String("capacity", profile.WorkCapacity), zap.Error(err))
		case capacity > 0:
			minutes = capacity
		}
	}

	if len(profile.WorkingDays) > 0 {
		days := make([]time.Weekday, 0, len(profile.WorkingDays))
		for _, name := range profile.WorkingDays {
			wd, err := dateutil.ParseWeekday(name)
			if err != nil {
				m.logger.Warn("Invalid working day in member profile", zap.String("day", name))
				continue
			}
			days = append(days, wd)
		}
		if len(days) > 0 {
			weekdays = days
		}
	}

	m.logger.Debug("Using member profile schedule",
		zap.Int("minutes_per_day", minutes),
		zap.Int("working_days", len(weekdays)))

	return minutes, weekdays
}
