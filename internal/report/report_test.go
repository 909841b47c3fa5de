package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/flextime/internal/calendar"
	"github.com/username/flextime/internal/flex"
	"github.com/username/flextime/internal/timemanager"
	"github.com/username/flextime/pkg/dateutil"
)

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0h"},
		{59, "0h 59min"},
		{60, "1h"},
		{450, "7h 30min"},
		{-75, "-1h 15min"},
		{-120, "-2h"},
	}

	for _, tt := range tests {
		if got := FormatMinutes(tt.minutes); got != tt.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestFormatSignedMinutes(t *testing.T) {
	assert.Equal(t, "+1h 30min", FormatSignedMinutes(90))
	assert.Equal(t, "-1h 30min", FormatSignedMinutes(-90))
	assert.Equal(t, "0h", FormatSignedMinutes(0))
}

func TestFormatDays(t *testing.T) {
	tests := []struct {
		minutes    int
		dayMinutes int
		want       string
	}{
		{450, 450, "1.0"},
		{675, 450, "1.5"},
		{-225, 450, "-0.5"},
		{100, 480, "0.2"},
		{0, 450, "0.0"},
		{100, 0, ""},
	}

	for _, tt := range tests {
		if got := FormatDays(tt.minutes, tt.dayMinutes); got != tt.want {
			t.Errorf("FormatDays(%d, %d) = %q, want %q", tt.minutes, tt.dayMinutes, got, tt.want)
		}
	}
}

func sampleResult() *timemanager.Result {
	longest := flex.DayResult{
		Date:          dateutil.Date(2023, time.June, 1),
		Category:      flex.WorkingDay,
		ActualMinutes: 555,
	}
	return &timemanager.Result{
		DayMinutes: 450,
		FirstEntry: dateutil.Date(2023, time.June, 1),
		Report: flex.Report{
			WorkingDays:     2,
			Weekends:        2,
			DaysOff:         1,
			PublicHolidays:  1,
			ExpectedMinutes: 900,
			WorkedMinutes:   1230,
			Balance:         675,
			LongestDay:      &longest,
		},
		TimeOff: []timemanager.PolicySummary{
			{Policy: "Vacation", Taken: 1, Upcoming: 3},
			{Policy: "Sick leave", Taken: 2},
		},
	}
}

func TestRender(t *testing.T) {
	out := Render(sampleResult(), Options{})

	assert.Contains(t, out, "Tracking since: 2023-06-01")
	assert.Contains(t, out, "Longest day: 9h 15min on Thursday, 2023-06-01")
	assert.Contains(t, out, "Vacation taken")
	assert.Contains(t, out, "Vacation upcoming")
	assert.Contains(t, out, "Sick leave taken")
	assert.NotContains(t, out, "Sick leave upcoming")
	assert.Contains(t, out, "Expected working time")
	assert.Contains(t, out, "15h")
	assert.Contains(t, out, "20h 30min")
	assert.Contains(t, out, "+11h 15min")
	assert.Contains(t, out, "1.5")
	assert.NotContains(t, out, "Start balance")
	assert.NotContains(t, out, "timer is running")
}

func TestRenderExplicitStart(t *testing.T) {
	res := sampleResult()
	res.Report.StartBalance = -30
	res.RunningTimer = true
	res.Report.CoverageGaps = []flex.CoverageGap{{
		Source: "file holidays",
		From:   dateutil.Date(2027, time.January, 1),
		To:     dateutil.Date(2027, time.January, 5),
	}}

	out := Render(res, Options{ExplicitStart: true, ShowStartBalance: true})

	assert.Contains(t, out, "Tracking at least since: 2023-06-01")
	assert.Contains(t, out, "Start balance")
	assert.Contains(t, out, "-0h 30min")
	assert.Contains(t, out, "A timer is running and is not counted")
	assert.Contains(t, out, "file holidays")
	assert.Contains(t, out, "counted as working days")
}

func TestRenderEmptyRange(t *testing.T) {
	res := &timemanager.Result{
		DayMinutes: 450,
		Report:     flex.Report{StartBalance: 90, Balance: 90},
	}

	out := Render(res, Options{ShowStartBalance: true})

	assert.NotContains(t, out, "Tracking since")
	assert.NotContains(t, out, "Longest day")
	assert.Equal(t, 2, strings.Count(out, "+1h 30min"))
}

func TestRenderStartBalanceRow(t *testing.T) {
	res := sampleResult()

	out := Render(res, Options{ExplicitStart: true, ShowStartBalance: true})
	assert.Contains(t, out, "Start balance", "explicit zero start balance is shown")

	out = Render(res, Options{ExplicitStart: true})
	assert.NotContains(t, out, "Start balance")
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), Options{}))
	assert.Contains(t, buf.String(), "Balance")
}

func TestRenderHolidays(t *testing.T) {
	list := &calendar.HolidayList{
		Source: "file",
		From:   dateutil.Date(2024, time.January, 1),
		To:     dateutil.Date(2024, time.December, 31),
		Holidays: []calendar.Holiday{
			{Date: dateutil.Date(2024, time.January, 1), Name: "New Year's Day"},
			{Date: dateutil.Date(2024, time.January, 6), Name: "Epiphany"},
		},
	}

	out := RenderHolidays(list)
	assert.Contains(t, out, "Holidays (file)")
	assert.Contains(t, out, "2024-01-01")
	assert.Contains(t, out, "Monday")
	assert.Contains(t, out, "Epiphany")
	assert.Contains(t, out, "Saturday")

	list.Holidays = nil
	assert.Equal(t, "No file holidays between 2024-01-01 and 2024-12-31\n", RenderHolidays(list))
}

func TestStartSpinnerNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	stop := StartSpinner(&buf, "Fetching")
	stop()
	assert.Empty(t, buf.String())
	assert.False(t, IsTerminal(&buf))
}

func TestSpinner(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Fetching")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "Fetching")
	assert.True(t, strings.HasSuffix(out, "\r\033[K"))
}
