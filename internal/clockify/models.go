package clockify

import (
	"fmt"
	"time"

	"github.com/username/flextime/pkg/dateutil"
)

// User represents the authenticated Clockify user
type User struct {
	ID               string       `json:"id"`
	Email            string       `json:"email"`
	Name             string       `json:"name"`
	ActiveWorkspace  string       `json:"activeWorkspace"`
	DefaultWorkspace string       `json:"defaultWorkspace"`
	Settings         UserSettings `json:"settings"`
}

// UserSettings represents the user's profile settings
type UserSettings struct {
	TimeZone  string `json:"timeZone"`
	WeekStart string `json:"weekStart"`
}

// MemberProfile represents the user's membership in a workspace
type MemberProfile struct {
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	WorkCapacity string   `json:"workCapacity"` // ISO 8601 duration per working day: PT8H
	WorkingDays  []string `json:"workingDays"`  // MONDAY, TUESDAY, ...
	WeekStart    string   `json:"weekStart"`
}

// TimeEntry represents a logged time entry
type TimeEntry struct {
	ID           string       `json:"id"`
	Description  string       `json:"description"`
	ProjectID    string       `json:"projectId"`
	Billable     bool         `json:"billable"`
	TimeInterval TimeInterval `json:"timeInterval"`
}

// TimeInterval represents when a time entry happened
type TimeInterval struct {
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end"`      // nil while the timer is running
	Duration *string    `json:"duration"` // ISO 8601 format: PT1H30M
}

// Running reports whether the timer of the entry is still running
func (e TimeEntry) Running() bool {
	return e.TimeInterval.End == nil
}

// Date returns the calendar date the entry started on, as reported by the service
func (e TimeEntry) Date() time.Time {
	return dateutil.Normalize(e.TimeInterval.Start)
}

// Length returns the logged duration of a finished entry
func (e TimeEntry) Length() (time.Duration, error) {
	if e.TimeInterval.End != nil {
		return e.TimeInterval.End.Sub(e.TimeInterval.Start), nil
	}
	if e.TimeInterval.Duration == nil {
		return 0, fmt.Errorf("time entry %s has neither end nor duration", e.ID)
	}
	minutes, err := ParseISO8601Duration(*e.TimeInterval.Duration)
	if err != nil {
		return 0, err
	}
	return time.Duration(minutes) * time.Minute, nil
}

// Time unit of a time-off request
const (
	TimeUnitDays  = "DAYS"
	TimeUnitHours = "HOURS"
)

// TimeOffStatusApproved is the only status that counts as time off
const TimeOffStatusApproved = "APPROVED"

// TimeOffRequest represents an approved or pending time-off request
type TimeOffRequest struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	PolicyID      string        `json:"policyId"`
	PolicyName    string        `json:"policyName"`
	Note          string        `json:"note"`
	TimeUnit      string        `json:"timeUnit"`
	Status        TimeOffStatus `json:"status"`
	TimeOffPeriod TimeOffPeriod `json:"timeOffPeriod"`
}

// TimeOffStatus represents the approval state of a request
type TimeOffStatus struct {
	StatusType string `json:"statusType"`
}

// TimeOffPeriod represents the span of a time-off request
type TimeOffPeriod struct {
	Period  Period `json:"period"`
	HalfDay bool   `json:"halfDay"`
}

// Period is a start/end timestamp pair
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Dates returns the first and last calendar date covered by the request.
// An end exactly at midnight belongs to the previous day.
func (r TimeOffRequest) Dates() (time.Time, time.Time) {
	from := dateutil.Normalize(r.TimeOffPeriod.Period.Start)
	end := r.TimeOffPeriod.Period.End
	to := dateutil.Normalize(end)
	if end.Equal(dateutil.StartOfDay(end)) && to.After(from) {
		to = to.AddDate(0, 0, -1)
	}
	if to.Before(from) {
		to = from
	}
	return from, to
}

// TimeOffSearchRequest represents request to search time-off requests
type TimeOffSearchRequest struct {
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
	Statuses []string `json:"statuses"`
	Users    []string `json:"users"`
}

// TimeOffSearchResponse represents a page of time-off requests
type TimeOffSearchResponse struct {
	Count    int              `json:"count"`
	Requests []TimeOffRequest `json:"requests"`
}

// Holiday represents a workspace holiday
type Holiday struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	DatePeriod           DatePeriod `json:"datePeriod"`
	OccursAnnually       bool       `json:"occursAnnually"`
	EveryoneIncludingNew bool       `json:"everyoneIncludingNew"`
}

// DatePeriod is an inclusive range of YYYY-MM-DD dates
type DatePeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Dates parses the holiday's first and last date
func (h Holiday) Dates() (time.Time, time.Time, error) {
	from, err := dateutil.ParseDate(h.DatePeriod.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("holiday %q start: %w", h.Name, err)
	}
	to := from
	if h.DatePeriod.EndDate != "" {
		to, err = dateutil.ParseDate(h.DatePeriod.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("holiday %q end: %w", h.Name, err)
		}
	}
	if to.Before(from) {
		to = from
	}
	return from, to, nil
}
