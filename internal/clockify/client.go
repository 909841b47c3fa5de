package clockify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/username/flextime/pkg/dateutil"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetries    = 3
	defaultRetryDelay = time.Second

	// The service rejects time-entry queries spanning more than 999 hours
	entriesWindowDays = 41
	entriesPageSize   = 1000
	entriesWorkers    = 4
	timeOffPageSize   = 200

	apiTimeLayout = "2006-01-02T15:04:05Z"
)

// APIError is a non-2xx response from the Clockify API
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request %s %s failed with status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Retryable reports whether repeating the request may succeed
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client represents Clockify API client
type Client struct {
	baseURL     string
	ptoURL      string
	apiKey      APIKey
	workspaceID string
	httpClient  *http.Client
	logger      *zap.Logger
	retryDelay  time.Duration

	userMu      sync.Mutex
	currentUser *User // Cached current user info
}

// NewClient creates a new Clockify API client.
// baseURL serves users and time entries, ptoURL serves time off and holidays.
func NewClient(baseURL, ptoURL string, apiKey APIKey, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ptoURL:  strings.TrimRight(ptoURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:     logger,
		retryDelay: defaultRetryDelay,
	}
}

// SetWorkspace pins the workspace instead of the user's active one
func (c *Client) SetWorkspace(id string) {
	c.workspaceID = id
}

// GetCurrentUser returns current authenticated user info (cached)
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	c.userMu.Lock()
	defer c.userMu.Unlock()

	if c.currentUser != nil {
		return c.currentUser, nil
	}

	var user User
	if err := c.doRequest(ctx, http.MethodGet, c.baseURL+"/v1/user", nil, &user); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("failed to get current user: empty user id in response")
	}

	c.currentUser = &user

	c.logger.Info("Current user identified",
		zap.String("name", user.Name),
		zap.String("id", user.ID),
		zap.String("api_key", c.apiKey.String()))

	return &user, nil
}

// identity resolves the current user and the workspace to query
func (c *Client) identity(ctx context.Context) (*User, string, error) {
	user, err := c.GetCurrentUser(ctx)
	if err != nil {
		return nil, "", err
	}

	workspace := c.workspaceID
	if workspace == "" {
		workspace = user.ActiveWorkspace
	}
	if workspace == "" {
		workspace = user.DefaultWorkspace
	}
	if workspace == "" {
		return nil, "", fmt.Errorf("no workspace for user %s: set clockify.workspace_id", user.ID)
	}

	return user, workspace, nil
}

// GetMemberProfile returns the user's working days and daily capacity
func (c *Client) GetMemberProfile(ctx context.Context) (*MemberProfile, error) {
	user, workspace, err := c.identity(ctx)
	if err != nil {
		return nil, err
	}

	var profile MemberProfile
	path := fmt.Sprintf("%s/v1/workspaces/%s/member-profile/%s", c.baseURL, workspace, user.ID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &profile); err != nil {
		return nil, fmt.Errorf("failed to get member profile: %w", err)
	}

	c.logger.Info("Member profile retrieved",
		zap.String("work_capacity", profile.WorkCapacity),
		zap.Strings("working_days", profile.WorkingDays))

	return &profile, nil
}

// GetTimeEntries returns all time entries started between the from and to dates inclusive.
// The span is split into windows the service accepts, fetched concurrently.
func (c *Client) GetTimeEntries(ctx context.Context, from, to time.Time) ([]TimeEntry, error) {
	user, workspace, err := c.identity(ctx)
	if err != nil {
		return nil, err
	}

	windows := entryWindows(from, to)
	results := make([][]TimeEntry, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(entriesWorkers)
	for i, w := range windows {
		g.Go(func() error {
			entries, err := c.getTimeEntriesWindow(gctx, workspace, user.ID, w[0], w[1])
			if err != nil {
				return fmt.Errorf("failed to get time entries %s..%s: %w",
					dateutil.FormatDate(w[0]), dateutil.FormatDate(w[1]), err)
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []TimeEntry
	for _, entries := range results {
		all = append(all, entries...)
	}

	c.logger.Info("Time entries retrieved",
		zap.String("from", dateutil.FormatDate(from)),
		zap.String("to", dateutil.FormatDate(to)),
		zap.Int("windows", len(windows)),
		zap.Int("count", len(all)))

	return all, nil
}

func (c *Client) getTimeEntriesWindow(ctx context.Context, workspace, userID string, from, to time.Time) ([]TimeEntry, error) {
	var entries []TimeEntry
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("start", from.Format(apiTimeLayout))
		q.Set("end", to.Add(24*time.Hour-time.Second).Format(apiTimeLayout))
		q.Set("in-progress", "false")
		q.Set("page", strconv.Itoa(page))
		q.Set("page-size", strconv.Itoa(entriesPageSize))

		path := fmt.Sprintf("%s/v1/workspaces/%s/user/%s/time-entries?%s", c.baseURL, workspace, userID, q.Encode())

		var batch []TimeEntry
		if err := c.doRequest(ctx, http.MethodGet, path, nil, &batch); err != nil {
			return nil, err
		}
		entries = append(entries, batch...)

		if len(batch) < entriesPageSize {
			return entries, nil
		}
	}
}

// entryWindows splits from..to into consecutive windows of at most entriesWindowDays dates
func entryWindows(from, to time.Time) [][2]time.Time {
	from, to = dateutil.Normalize(from), dateutil.Normalize(to)

	var windows [][2]time.Time
	for start := from; !start.After(to); start = start.AddDate(0, 0, entriesWindowDays) {
		end := start.AddDate(0, 0, entriesWindowDays-1)
		if end.After(to) {
			end = to
		}
		windows = append(windows, [2]time.Time{start, end})
	}
	return windows
}

// GetTimeOffRequests returns all approved time-off requests of the current user
func (c *Client) GetTimeOffRequests(ctx context.Context) ([]TimeOffRequest, error) {
	user, workspace, err := c.identity(ctx)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s/v1/workspaces/%s/requests", c.ptoURL, workspace)

	var requests []TimeOffRequest
	for page := 1; ; page++ {
		req := TimeOffSearchRequest{
			Page:     page,
			PageSize: timeOffPageSize,
			Statuses: []string{TimeOffStatusApproved},
			Users:    []string{user.ID},
		}

		var resp TimeOffSearchResponse
		if err := c.doRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
			return nil, fmt.Errorf("failed to get time-off requests: %w", err)
		}
		requests = append(requests, resp.Requests...)

		if len(resp.Requests) == 0 || len(requests) >= resp.Count {
			break
		}
	}

	c.logger.Info("Time-off requests retrieved",
		zap.Int("count", len(requests)))

	return requests, nil
}

// GetHolidays returns the holidays assigned to the current user between from and to inclusive
func (c *Client) GetHolidays(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	user, workspace, err := c.identity(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("assigned-to", user.ID)
	q.Set("start", dateutil.FormatDate(from))
	q.Set("end", dateutil.FormatDate(to))
	path := fmt.Sprintf("%s/v1/workspaces/%s/holidays/in-period?%s", c.ptoURL, workspace, q.Encode())

	var holidays []Holiday
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &holidays); err != nil {
		return nil, fmt.Errorf("failed to get holidays: %w", err)
	}

	c.logger.Info("Holidays retrieved",
		zap.String("from", dateutil.FormatDate(from)),
		zap.String("to", dateutil.FormatDate(to)),
		zap.Int("count", len(holidays)))

	return holidays, nil
}

// doRequest performs HTTP request with authentication and retries
func (c *Client) doRequest(ctx context.Context, method, url string, body interface{}, result interface{}) error {
	var payload []byte
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = jsonData
	}

	var lastErr error
	for attempt := 1; attempt <= defaultRetries; attempt++ {
		err := c.doRequestOnce(ctx, method, url, payload, result)
		if err == nil {
			return nil
		}

		lastErr = err
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Warn("Request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", defaultRetries),
			zap.Error(err))

		if attempt < defaultRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}
	}

	return fmt.Errorf("request failed after %d attempts: %w", defaultRetries, lastErr)
}

// doRequestOnce performs a single HTTP request
func (c *Client) doRequestOnce(ctx context.Context, method, url string, payload []byte, result interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.apiKey.Apply(req)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     method,
			URL:        req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// ParseISO8601Duration parses ISO 8601 duration to whole minutes, rounding seconds.
// Supported formats:
//   - PT8H -> 480 min
//   - PT7H30M -> 450 min
//   - PT7.5H -> 450 min
//   - P1D -> 1440 min
//   - P1W -> 10080 min
//   - P1DT2H -> 1560 min
func ParseISO8601Duration(duration string) (int, error) {
	if duration == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if duration[0] != 'P' {
		return 0, fmt.Errorf("invalid duration %q: must start with P", duration)
	}

	units := map[byte]float64{'W': 7 * 24 * 60 * 60, 'D': 24 * 60 * 60}
	timeUnits := map[byte]float64{'H': 60 * 60, 'M': 60, 'S': 1}

	seconds := 0.0
	inTime := false
	number := ""
	for i := 1; i < len(duration); i++ {
		ch := duration[i]
		switch {
		case ch == 'T':
			if inTime || number != "" {
				return 0, fmt.Errorf("invalid duration %q", duration)
			}
			inTime = true
		case ch >= '0' && ch <= '9', ch == '.', ch == ',':
			number += string(ch)
		default:
			scale, ok := units[ch]
			if inTime {
				scale, ok = timeUnits[ch]
			}
			if !ok || number == "" {
				return 0, fmt.Errorf("invalid duration %q", duration)
			}
			value, err := strconv.ParseFloat(strings.ReplaceAll(number, ",", "."), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q: %w", duration, err)
			}
			seconds += value * scale
			number = ""
		}
	}
	if number != "" || len(duration) == 1 || duration[len(duration)-1] == 'T' {
		return 0, fmt.Errorf("invalid duration %q", duration)
	}

	return int(math.Round(seconds / 60)), nil
}
