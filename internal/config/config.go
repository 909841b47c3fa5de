package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/username/flextime/pkg/dateutil"
)

// Calendar source types
const (
	CalendarClockify = "clockify"
	CalendarFile     = "file"
)

// Ignore item types besides time-off policy names
const (
	IgnorePublicHoliday = "public_holiday"
	IgnoreTimeOff       = "time_off"
)

// Config represents application configuration
type Config struct {
	Clockify ClockifyConfig `mapstructure:"clockify"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
	Users    []UserSettings `mapstructure:"users"`
}

// ClockifyConfig represents Clockify API configuration
type ClockifyConfig struct {
	APIEndpoint string `mapstructure:"api_endpoint"`
	PTOEndpoint string `mapstructure:"pto_endpoint"`
	Token       string `mapstructure:"token"`
	WorkspaceID string `mapstructure:"workspace_id"` // Empty means the user's active workspace
	Timeout     string `mapstructure:"timeout"`
}

// CalendarConfig represents public holiday source configuration
type CalendarConfig struct {
	Type string `mapstructure:"type"` // "clockify" or "file"
	File string `mapstructure:"file"` // Holiday file, embedded default when empty
}

// ScheduleConfig represents the default working schedule
type ScheduleConfig struct {
	HoursPerDay float64  `mapstructure:"hours_per_day"`
	WorkingDays []string `mapstructure:"working_days"`
	UseProfile  bool     `mapstructure:"use_profile"` // Prefer the Clockify member profile
}

// CacheConfig represents the first-date cache configuration
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// UserSettings holds per-user adjustments, matched by email
type UserSettings struct {
	Email                string          `mapstructure:"email"`
	IgnoreItems          []IgnoreItem    `mapstructure:"ignore_items"`
	ExpectedWorkingHours []ExpectedHours `mapstructure:"expected_working_hours"`
}

// IgnoreItem drops holidays or time off within a date range
type IgnoreItem struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	DateStart   string `mapstructure:"date_start"`
	DateEnd     string `mapstructure:"date_end"`
	Type        string `mapstructure:"type"` // "public_holiday", "time_off" or a time-off policy name
}

// ExpectedHours overrides the expected hours per working day within a date range
type ExpectedHours struct {
	Name        string  `mapstructure:"name"`
	Description string  `mapstructure:"description"`
	DateStart   string  `mapstructure:"date_start"`
	DateEnd     string  `mapstructure:"date_end"`
	HoursPerDay float64 `mapstructure:"hours_per_day"`
}

// Load loads configuration from file and environment.
// With an empty path a missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("flextime")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.flextime")
	}

	// Read environment variables
	v.SetEnvPrefix("FLEXTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("clockify.token", "FLEXTIME_CLOCKIFY_TOKEN", "CLOCKIFY_TOKEN", "TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind token env: %w", err)
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("clockify.api_endpoint", "https://api.clockify.me/api")
	v.SetDefault("clockify.pto_endpoint", "https://pto.api.clockify.me")
	v.SetDefault("clockify.timeout", "30s")
	v.SetDefault("calendar.type", CalendarClockify)
	v.SetDefault("schedule.hours_per_day", 7.5)
	v.SetDefault("schedule.working_days", []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"})
	v.SetDefault("schedule.use_profile", false)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("log.level", "warn")

	// Empty defaults so the keys can be set from the environment
	v.SetDefault("clockify.workspace_id", "")
	v.SetDefault("calendar.file", "")
	v.SetDefault("cache.path", "")
	v.SetDefault("log.file", "")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate Clockify config
	if c.Clockify.APIEndpoint == "" {
		return fmt.Errorf("clockify.api_endpoint is required")
	}
	if c.Clockify.PTOEndpoint == "" {
		return fmt.Errorf("clockify.pto_endpoint is required")
	}

	// Validate Calendar config
	switch c.Calendar.Type {
	case CalendarClockify, CalendarFile:
	default:
		return fmt.Errorf("calendar.type must be '%s' or '%s', got '%s'", CalendarClockify, CalendarFile, c.Calendar.Type)
	}

	// Validate Schedule config
	if c.Schedule.HoursPerDay <= 0 || c.Schedule.HoursPerDay > 24 {
		return fmt.Errorf("schedule.hours_per_day must be between 0 and 24, got %v", c.Schedule.HoursPerDay)
	}
	if _, err := c.Schedule.Weekdays(); err != nil {
		return fmt.Errorf("schedule.working_days: %w", err)
	}

	// Validate per-user settings
	for i, u := range c.Users {
		if u.Email == "" {
			return fmt.Errorf("users[%d].email is required", i)
		}
		for j, item := range u.IgnoreItems {
			if item.Type == "" {
				return fmt.Errorf("users[%d].ignore_items[%d].type is required", i, j)
			}
			if _, _, err := item.Dates(); err != nil {
				return fmt.Errorf("users[%d].ignore_items[%d]: %w", i, j, err)
			}
		}
		for j, exp := range u.ExpectedWorkingHours {
			if exp.HoursPerDay < 0 || exp.HoursPerDay > 24 {
				return fmt.Errorf("users[%d].expected_working_hours[%d].hours_per_day must be between 0 and 24", i, j)
			}
			if _, _, err := exp.Dates(); err != nil {
				return fmt.Errorf("users[%d].expected_working_hours[%d]: %w", i, j, err)
			}
		}
	}

	return nil
}

// GetToken returns the Clockify API key
func (c *ClockifyConfig) GetToken() (string, error) {
	if c.Token == "" {
		return "", fmt.Errorf("clockify token is required: use --token, CLOCKIFY_TOKEN or TOKEN")
	}
	return c.Token, nil
}

// GetTimeout returns HTTP client timeout duration
func (c *ClockifyConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 30 * time.Second
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return duration
}

// DayMinutes returns the default expected minutes per working day
func (c *ScheduleConfig) DayMinutes() int {
	return HoursToMinutes(c.HoursPerDay)
}

// Weekdays returns the configured working weekdays
func (c *ScheduleConfig) Weekdays() ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(c.WorkingDays))
	for _, name := range c.WorkingDays {
		wd, err := dateutil.ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		days = append(days, wd)
	}
	return days, nil
}

// GetPath returns the cache database path, under the home directory by default
func (c *CacheConfig) GetPath() string {
	if c.Path != "" {
		return c.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".flextime", "cache.db")
	}
	return filepath.Join(home, ".flextime", "cache.db")
}

// UserSettings returns the settings for an email, nil when none are configured
func (c *Config) UserSettings(email string) *UserSettings {
	for i := range c.Users {
		if strings.EqualFold(c.Users[i].Email, email) {
			return &c.Users[i]
		}
	}
	return nil
}

// Dates returns the inclusive date range of the item
func (i IgnoreItem) Dates() (time.Time, time.Time, error) {
	return parseRange(i.DateStart, i.DateEnd)
}

// IsPublicHoliday reports whether the item drops public holidays
func (i IgnoreItem) IsPublicHoliday() bool {
	return strings.EqualFold(i.Type, IgnorePublicHoliday)
}

// MatchesTimeOff reports whether the item drops time off of the given policy
func (i IgnoreItem) MatchesTimeOff(policy string) bool {
	return strings.EqualFold(i.Type, IgnoreTimeOff) || strings.EqualFold(i.Type, policy)
}

// Dates returns the inclusive date range of the override
func (e ExpectedHours) Dates() (time.Time, time.Time, error) {
	return parseRange(e.DateStart, e.DateEnd)
}

// Minutes returns the expected minutes per working day
func (e ExpectedHours) Minutes() int {
	return HoursToMinutes(e.HoursPerDay)
}

// HoursToMinutes converts fractional hours to whole minutes without float drift
func HoursToMinutes(hours float64) int {
	return int(decimal.NewFromFloat(hours).Mul(decimal.NewFromInt(60)).Round(0).IntPart())
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	from, err := dateutil.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date_start: %w", err)
	}
	to, err := dateutil.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date_end: %w", err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("date_end %s is before date_start %s", end, start)
	}
	return from, to, nil
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Clockify.Token = os.ExpandEnv(c.Clockify.Token)
	c.Clockify.WorkspaceID = os.ExpandEnv(c.Clockify.WorkspaceID)
	c.Calendar.File = os.ExpandEnv(c.Calendar.File)
	c.Cache.Path = os.ExpandEnv(c.Cache.Path)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
