package timemanager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/username/flextime/internal/calendar"
	"github.com/username/flextime/internal/clockify"
	"github.com/username/flextime/internal/config"
	"github.com/username/flextime/internal/flex"
	"github.com/username/flextime/pkg/dateutil"
)

// Holidays are looked up this far past today so upcoming days off skip them
const holidayLookahead = 365

// ErrNoTimeEntries is returned when no start date is known and nothing was ever tracked
var ErrNoTimeEntries = errors.New("no time entries found, pass --start-date to calculate anyway")

// Source is the part of the Clockify client the manager needs
type Source interface {
	GetCurrentUser(ctx context.Context) (*clockify.User, error)
	GetMemberProfile(ctx context.Context) (*clockify.MemberProfile, error)
	GetTimeEntries(ctx context.Context, from, to time.Time) ([]clockify.TimeEntry, error)
	GetTimeOffRequests(ctx context.Context) ([]clockify.TimeOffRequest, error)
}

// FirstDateStore remembers the first tracked date of a user between runs
type FirstDateStore interface {
	FirstDate(ctx context.Context, userKey string) (time.Time, bool, error)
	SetFirstDate(ctx context.Context, userKey string, date time.Time) error
}

// Params are the resolved inputs of one calculation
type Params struct {
	Start        *time.Time // nil: cached first date, else the earliest allowed date
	StartBalance int        // minutes carried over
	IncludeToday bool
	Today        time.Time
}

// Result is a calculated balance with everything needed to present it
type Result struct {
	User         *clockify.User
	Report       flex.Report
	DayMinutes   int       // default expected minutes of a working day
	FirstEntry   time.Time // earliest logged day in the range, zero if none
	StartCached  bool      // start date came from the cache
	Holidays     []calendar.Holiday
	TimeOff      []PolicySummary
	RunningTimer bool // a timer was running and is not counted
}

// Manager computes flex-time balances from Clockify data
type Manager struct {
	config   *config.Config
	source   Source
	calendar calendar.Calendar
	store    FirstDateStore
	logger   *zap.Logger
}

// NewManager creates a new time manager. store may be nil to disable caching.
func NewManager(
	cfg *config.Config,
	source Source,
	cal calendar.Calendar,
	store FirstDateStore,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		config:   cfg,
		source:   source,
		calendar: cal,
		store:    store,
		logger:   logger,
	}
}

// fetched holds the reference data gathered for one run
type fetched struct {
	profile  *clockify.MemberProfile
	entries  []clockify.TimeEntry
	requests []clockify.TimeOffRequest
	holidays *calendar.HolidayList
}

// Calculate fetches the user's data and computes the balance
func (m *Manager) Calculate(ctx context.Context, p Params) (*Result, error) {
	user, err := m.source.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	settings := m.config.UserSettings(user.Email)

	start, cached := m.resolveStart(ctx, p, user.ID)

	rng, err := flex.NewDateRange(start, p.IncludeToday, p.Today)
	if err != nil {
		return nil, err
	}

	m.logger.Info("Starting balance calculation",
		zap.String("range", rng.String()),
		zap.Bool("start_cached", cached),
		zap.Int("start_balance", p.StartBalance))

	data, err := m.fetch(ctx, rng, p.Today)
	if err != nil {
		return nil, err
	}

	schedule, dayMinutes := m.buildSchedule(data.profile, settings)
	entries, running := m.workEntries(data.entries)
	holidays := m.holidaySet(data.holidays, settings)
	daysOff := m.resolveDaysOff(data.requests, settings)

	first, hasEntries := entries.FirstDate()
	if p.Start == nil && !cached && !hasEntries {
		return nil, ErrNoTimeEntries
	}
	if p.Start == nil && hasEntries && first.After(rng.Start) && !first.After(rng.End) {
		m.logger.Info("Starting from first tracked day",
			zap.String("first_day", dateutil.FormatDate(first)))
		rng.Start = first
	}
	if p.Start == nil && !cached && hasEntries {
		m.cacheFirstDate(ctx, user.ID, first)
	}

	report := flex.Run(flex.Params{
		Range:        rng,
		Holidays:     holidays,
		DaysOff:      daysOff.dates,
		Schedule:     schedule,
		WorkEntries:  entries,
		StartBalance: p.StartBalance,
		Coverage:     []flex.Coverage{data.holidays.Coverage()},
	})

	for _, gap := range report.CoverageGaps {
		m.logger.Warn("No reference data for part of the range, treating dates as working days",
			zap.String("source", gap.Source),
			zap.String("from", dateutil.FormatDate(gap.From)),
			zap.String("to", dateutil.FormatDate(gap.To)),
			zap.Int("days", gap.Days()))
	}

	fields := []zap.Field{zap.Int("days", report.TotalDays()), zap.Int("balance", report.Balance)}
	for _, c := range flex.Categories {
		fields = append(fields, zap.Int(c.String(), report.Count(c)))
	}
	m.logger.Info("Balance calculated", fields...)

	result := &Result{
		User:         user,
		Report:       report,
		DayMinutes:   dayMinutes,
		StartCached:  cached,
		TimeOff:      daysOff.summarize(report, schedule, holidays),
		RunningTimer: running,
	}
	if hasEntries && rng.Contains(first) {
		result.FirstEntry = first
	}
	for _, h := range data.holidays.Holidays {
		if rng.Contains(h.Date) {
			result.Holidays = append(result.Holidays, h)
		}
	}

	return result, nil
}

// resolveStart picks the explicit start, else the cached first date, else the earliest allowed date
func (m *Manager) resolveStart(ctx context.Context, p Params, userID string) (time.Time, bool) {
	if p.Start != nil {
		return *p.Start, false
	}
	if m.store == nil {
		return flex.MinStartDate, false
	}

	date, ok, err := m.store.FirstDate(ctx, userID)
	if err != nil {
		m.logger.Warn("Failed to read first date from cache", zap.Error(err))
		return flex.MinStartDate, false
	}
	if !ok || date.Before(flex.MinStartDate) {
		return flex.MinStartDate, false
	}
	return date, true
}

func (m *Manager) cacheFirstDate(ctx context.Context, userID string, first time.Time) {
	if m.store == nil {
		return
	}
	if err := m.store.SetFirstDate(ctx, userID, first); err != nil {
		m.logger.Warn("Failed to cache first date", zap.Error(err))
	}
}

// fetch gathers profile, time entries, time off and holidays concurrently
func (m *Manager) fetch(ctx context.Context, rng flex.DateRange, today time.Time) (*fetched, error) {
	var data fetched
	g, gctx := errgroup.WithContext(ctx)

	if m.config.Schedule.UseProfile {
		g.Go(func() error {
			profile, err := m.source.GetMemberProfile(gctx)
			if err != nil {
				m.logger.Warn("Member profile unavailable, using configured schedule", zap.Error(err))
				return nil
			}
			data.profile = profile
			return nil
		})
	}

	if !rng.Empty() {
		g.Go(func() error {
			entries, err := m.source.GetTimeEntries(gctx, rng.Start, rng.End)
			if err != nil {
				return err
			}
			data.entries = entries
			return nil
		})
	}

	g.Go(func() error {
		requests, err := m.source.GetTimeOffRequests(gctx)
		if err != nil {
			return err
		}
		data.requests = requests
		return nil
	})

	g.Go(func() error {
		holidays, err := m.calendar.Holidays(gctx, rng.Start, dateutil.AddDays(today, holidayLookahead))
		if err != nil {
			return fmt.Errorf("failed to get holidays: %w", err)
		}
		data.holidays = holidays
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// workEntries sums finished time entries per day. Running timers are skipped.
func (m *Manager) workEntries(raw []clockify.TimeEntry) (flex.WorkEntries, bool) {
	perDay := make(map[time.Time]time.Duration)
	running := false

	for _, e := range raw {
		if e.Running() {
			running = true
			m.logger.Debug("Skipping running timer", zap.String("entry", e.ID))
			continue
		}
		length, err := e.Length()
		if err != nil {
			m.logger.Warn("Skipping time entry", zap.String("entry", e.ID), zap.Error(err))
			continue
		}
		perDay[e.Date()] += length
	}

	entries := make(flex.WorkEntries, len(perDay))
	for date, d := range perDay {
		entries.Add(date, int(d.Round(time.Minute)/time.Minute))
	}
	return entries, running
}

// holidaySet applies the user's ignore items to the calendar's holidays
func (m *Manager) holidaySet(list *calendar.HolidayList, settings *config.UserSettings) flex.DateSet {
	set := list.Dates()
	if settings == nil {
		return set
	}

	for _, item := range settings.IgnoreItems {
		if !item.IsPublicHoliday() {
			continue
		}
		from, to, err := item.Dates()
		if err != nil {
			continue
		}
		set.Remove(from, to)
		m.logger.Info("Ignoring public holidays",
			zap.String("item", item.Name),
			zap.String("from", dateutil.FormatDate(from)),
			zap.String("to", dateutil.FormatDate(to)))
	}
	return set
}
