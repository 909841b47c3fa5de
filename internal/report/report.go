package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/username/flextime/internal/calendar"
	"github.com/username/flextime/internal/timemanager"
	"github.com/username/flextime/pkg/dateutil"
)

// Options controls what the balance report shows
type Options struct {
	ExplicitStart    bool // start date was given, so the first entry is a lower bound
	ShowStartBalance bool // start balance was given, even if zero
}

// Write renders the balance report to w
func Write(w io.Writer, res *timemanager.Result, opts Options) error {
	_, err := io.WriteString(w, Render(res, opts))
	return err
}

// Render renders summary lines followed by the balance table
func Render(res *timemanager.Result, opts Options) string {
	var b strings.Builder

	for _, line := range summaryLines(res, opts) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(balanceTable(res, opts))
	b.WriteString("\n")

	return b.String()
}

func summaryLines(res *timemanager.Result, opts Options) []string {
	r := res.Report
	var lines []string

	if !res.FirstEntry.IsZero() {
		label := "Tracking since"
		if opts.ExplicitStart {
			label = "Tracking at least since"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, dateutil.FormatDate(res.FirstEntry)))
	}

	if r.LongestDay != nil {
		lines = append(lines, fmt.Sprintf("Longest day: %s on %s, %s",
			FormatMinutes(r.LongestDay.ActualMinutes),
			r.LongestDay.Date.Weekday(),
			dateutil.FormatDate(r.LongestDay.Date)))
	}

	if res.RunningTimer {
		lines = append(lines, StyleYellow.Render("A timer is running and is not counted"))
	}

	for _, gap := range r.CoverageGaps {
		lines = append(lines, StyleYellow.Render(fmt.Sprintf("Note: %s, counted as working days", gap)))
	}

	return lines
}

func balanceTable(res *timemanager.Result, opts Options) string {
	r := res.Report
	rows := [][]string{
		{"Public holidays", strconv.Itoa(r.PublicHolidays), ""},
	}

	for _, p := range res.TimeOff {
		rows = append(rows, []string{p.Policy + " taken", strconv.Itoa(p.Taken), ""})
		if p.Upcoming > 0 {
			rows = append(rows, []string{p.Policy + " upcoming", strconv.Itoa(p.Upcoming), ""})
		}
	}

	rows = append(rows,
		[]string{"Weekends", strconv.Itoa(r.Weekends), ""},
		[]string{"Expected working time", strconv.Itoa(r.WorkingDays), FormatMinutes(r.ExpectedMinutes)},
		[]string{"Worked time", "", FormatMinutes(r.WorkedMinutes)},
	)

	if opts.ShowStartBalance {
		rows = append(rows, []string{"Start balance", "", FormatSignedMinutes(r.StartBalance)})
	}

	rows = append(rows, []string{
		"Balance",
		FormatDays(r.Balance, res.DayMinutes),
		FormatSignedMinutes(r.Balance),
	})
	balanceRow := len(rows) - 1

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Item", "Days", "Hours & minutes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return cell.Inherit(StyleHeader)
			case row == balanceRow && col > 0:
				return cell.Inherit(BalanceStyle(r.Balance))
			case row == balanceRow:
				return cell.Inherit(StyleBold)
			case col == 1:
				return cell.Align(lipgloss.Right)
			default:
				return cell
			}
		})

	return t.String()
}

// RenderHolidays renders a holiday list as a table
func RenderHolidays(list *calendar.HolidayList) string {
	if len(list.Holidays) == 0 {
		return fmt.Sprintf("No %s holidays between %s and %s\n",
			list.Source, dateutil.FormatDate(list.From), dateutil.FormatDate(list.To))
	}

	rows := make([][]string, 0, len(list.Holidays))
	for _, h := range list.Holidays {
		rows = append(rows, []string{dateutil.FormatDate(h.Date), h.Date.Weekday().String(), h.Name})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Date", "Weekday", "Name").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return cell.Inherit(StyleHeader)
			}
			if col == 1 && (rows[row][1] == "Saturday" || rows[row][1] == "Sunday") {
				return cell.Inherit(StyleDim)
			}
			return cell
		})

	return fmt.Sprintf("Holidays (%s)\n%s\n", list.Source, t.String())
}
