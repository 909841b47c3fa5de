package calendar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/flextime/internal/config"
)

// CompositeCalendar implements Calendar with fallback strategy
// Primary: ClockifyCalendar (API)
// Fallback: FileCalendar (local file)
type CompositeCalendar struct {
	primary  Calendar
	fallback Calendar
	logger   *zap.Logger
}

// NewCompositeCalendar creates a new CompositeCalendar
func NewCompositeCalendar(primary, fallback Calendar, logger *zap.Logger) *CompositeCalendar {
	return &CompositeCalendar{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Holidays returns the holidays between from and to inclusive
func (cc *CompositeCalendar) Holidays(ctx context.Context, from, to time.Time) (*HolidayList, error) {
	// Try primary first
	list, err := cc.primary.Holidays(ctx, from, to)
	if err == nil {
		return list, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	cc.logger.Warn("Primary calendar failed, falling back to file",
		zap.Error(err))

	// Fallback to file
	return cc.fallback.Holidays(ctx, from, to)
}

// LoadFallback loads the fallback calendar (if FileCalendar)
func (cc *CompositeCalendar) LoadFallback() error {
	if fc, ok := cc.fallback.(*FileCalendar); ok {
		if err := fc.Load(); err != nil {
			return fmt.Errorf("failed to load fallback calendar: %w", err)
		}
		cc.logger.Info("Fallback calendar loaded successfully")
	}
	return nil
}

// New builds the calendar selected by the configuration
func New(cfg config.CalendarConfig, fetcher HolidayFetcher, logger *zap.Logger) (Calendar, error) {
	file := NewFileCalendar(cfg.File, logger)

	switch cfg.Type {
	case config.CalendarFile:
		if err := file.Load(); err != nil {
			return nil, err
		}
		return file, nil
	case config.CalendarClockify:
		composite := NewCompositeCalendar(NewClockifyCalendar(fetcher, logger), file, logger)
		if err := composite.LoadFallback(); err != nil {
			return nil, err
		}
		return composite, nil
	default:
		return nil, fmt.Errorf("unknown calendar type '%s'", cfg.Type)
	}
}
