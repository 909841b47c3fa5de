package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/username/flextime/internal/clockify"
	"github.com/username/flextime/pkg/dateutil"
)

// HolidayFetcher is the part of the Clockify client the calendar needs
type HolidayFetcher interface {
	GetHolidays(ctx context.Context, from, to time.Time) ([]clockify.Holiday, error)
}

// ClockifyCalendar implements Calendar interface using the workspace holidays
// assigned to the user in Clockify
type ClockifyCalendar struct {
	fetcher HolidayFetcher
	logger  *zap.Logger
}

// NewClockifyCalendar creates a new ClockifyCalendar instance
func NewClockifyCalendar(fetcher HolidayFetcher, logger *zap.Logger) *ClockifyCalendar {
	return &ClockifyCalendar{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Holidays returns the holidays between from and to inclusive.
// Multi-day holidays are expanded into single dates.
func (c *ClockifyCalendar) Holidays(ctx context.Context, from, to time.Time) (*HolidayList, error) {
	from, to = dateutil.Normalize(from), dateutil.Normalize(to)

	raw, err := c.fetcher.GetHolidays(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}

	seen := make(map[time.Time]bool)
	list := &HolidayList{Source: "clockify", From: from, To: to}
	for _, h := range raw {
		start, end, err := h.Dates()
		if err != nil {
			c.logger.Warn("Skipping holiday with invalid dates",
				zap.String("name", h.Name),
				zap.Error(err))
			continue
		}

		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if d.Before(from) || d.After(to) || seen[d] {
				continue
			}
			seen[d] = true
			list.Holidays = append(list.Holidays, Holiday{Date: d, Name: h.Name})
		}
	}
	sort.Slice(list.Holidays, func(i, j int) bool {
		return list.Holidays[i].Date.Before(list.Holidays[j].Date)
	})

	c.logger.Debug("Holidays resolved",
		zap.String("source", list.Source),
		zap.Int("count", len(list.Holidays)))

	return list, nil
}
