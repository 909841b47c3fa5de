package calendar

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/flextime/pkg/dateutil"
)

//go:embed holidays_fi.txt
var defaultHolidays string

// FileCalendar implements Calendar interface using a local text file.
// Without a file path it uses the built-in Finnish holidays.
type FileCalendar struct {
	filePath string
	logger   *zap.Logger
	data     map[time.Time]Holiday
	minYear  int
	maxYear  int
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(filePath string, logger *zap.Logger) *FileCalendar {
	return &FileCalendar{
		filePath: filePath,
		logger:   logger,
		data:     make(map[time.Time]Holiday),
	}
}

// Load loads calendar data from file
func (fc *FileCalendar) Load() error {
	if fc.filePath == "" {
		return fc.parse(strings.NewReader(defaultHolidays), "built-in")
	}

	file, err := os.Open(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	return fc.parse(file, fc.filePath)
}

func (fc *FileCalendar) parse(r io.Reader, name string) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse line
		// Format: YYYY-MM-DD type [note]
		// Example: 2025-12-06 holiday Independence Day
		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 2 {
			fc.logger.Warn("Invalid line format", zap.String("line", line))
			continue
		}

		dateStr := parts[0]
		typeStr := parts[1]
		note := ""
		if len(parts) == 3 {
			note = strings.TrimSpace(parts[2])
		}

		// Parse date
		date, err := time.Parse(dateutil.DateLayout, dateStr)
		if err != nil {
			fc.logger.Warn("Failed to parse date", zap.String("date", dateStr), zap.Error(err))
			continue
		}

		if typeStr != "holiday" {
			fc.logger.Warn("Unknown day type", zap.String("type", typeStr))
			continue
		}

		fc.data[date] = Holiday{Date: date, Name: note}
		if fc.minYear == 0 || date.Year() < fc.minYear {
			fc.minYear = date.Year()
		}
		if date.Year() > fc.maxYear {
			fc.maxYear = date.Year()
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading calendar file: %w", err)
	}

	fc.logger.Info("Calendar file loaded",
		zap.String("file", name),
		zap.Int("holidays", len(fc.data)),
		zap.Int("from_year", fc.minYear),
		zap.Int("to_year", fc.maxYear))

	return nil
}

// Holidays returns the holidays between from and to inclusive.
// Coverage is limited to the whole years present in the file.
func (fc *FileCalendar) Holidays(_ context.Context, from, to time.Time) (*HolidayList, error) {
	from, to = dateutil.Normalize(from), dateutil.Normalize(to)

	list := &HolidayList{Source: "file", From: from, To: from.AddDate(0, 0, -1)}
	if len(fc.data) == 0 {
		return list, nil
	}

	first := dateutil.Date(fc.minYear, time.January, 1)
	last := dateutil.Date(fc.maxYear, time.December, 31)
	list.From, list.To = from, to
	if list.From.Before(first) {
		list.From = first
	}
	if list.To.After(last) {
		list.To = last
	}

	for date, h := range fc.data {
		if !date.Before(from) && !date.After(to) {
			list.Holidays = append(list.Holidays, h)
		}
	}
	sort.Slice(list.Holidays, func(i, j int) bool {
		return list.Holidays[i].Date.Before(list.Holidays[j].Date)
	})

	return list, nil
}
