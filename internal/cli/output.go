package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"time-tracker/internal/domain"
	"time-tracker/internal/timer"
	"time-tracker/internal/wire"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func printEntries(w io.Writer, entries []domain.TimeEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no time entries")
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		category := "-"
		if e.Category != nil {
			category = e.Category.Icon + " " + e.Category.Name
		}
		duration := "running"
		if e.DurationSec != nil {
			duration = timer.FormatClock(*e.DurationSec)
		} else if e.IsPaused() {
			duration = "paused"
		}
		rows = append(rows, []string{
			e.Start.Local().Format("2006-01-02 15:04"),
			e.Title,
			category,
			duration,
		})
	}
	printTable(w, []string{"Start", "Title", "Category", "Duration"}, rows)
}

func printSummary(w io.Writer, s wire.Summary) {
	fmt.Fprintf(w, "%s → %s\n", s.From.Local().Format("Mon 2006-01-02"), s.To.Add(-1).Local().Format("Mon 2006-01-02"))
	if s.TotalTime == 0 {
		fmt.Fprintln(w, "no finished time entries in this period")
		return
	}
	rows := make([][]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		rows = append(rows, []string{
			c.Icon + " " + c.Name,
			timer.FormatHoursMinutes(c.TotalDuration),
			fmt.Sprintf("%d", c.EntryCount),
			fmt.Sprintf("%.1f%%", c.Percent),
		})
	}
	printTable(w, []string{"Category", "Time", "Entries", "Share"}, rows)

	fmt.Fprintf(w, "Total:         %s (%s)\n", timer.FormatHoursMinutes(s.TotalTime), timer.FormatHours(s.TotalTime))
	fmt.Fprintf(w, "Work & study:  %s (%.1f%%)\n", timer.FormatHoursMinutes(s.WorkStudyTime), s.WorkStudyPercent)
	fmt.Fprintf(w, "Unproductive:  %s\n", timer.FormatHoursMinutes(s.UnproductiveTime))
	fmt.Fprintf(w, "Avg session:   %s, median %s\n",
		timer.FormatHoursMinutes(int64(s.AverageSession)), timer.FormatHoursMinutes(int64(s.MedianSession)))
	if s.MostUsed != nil {
		fmt.Fprintf(w, "Most used:     %s %s\n", s.MostUsed.Icon, s.MostUsed.Name)
	}
	if s.LeastUsed != nil {
		fmt.Fprintf(w, "Least used:    %s %s\n", s.LeastUsed.Icon, s.LeastUsed.Name)
	}

	if len(s.Days) > 1 {
		days := make([][]string, 0, len(s.Days))
		for _, d := range s.Days {
			days = append(days, []string{d.Date, timer.FormatHoursMinutes(d.Total)})
		}
		printTable(w, []string{"Day", "Time"}, days)
	}
}
