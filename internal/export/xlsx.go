// Package export renders time entries and their summary as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"time-tracker/internal/domain"
	"time-tracker/internal/stats"
	"time-tracker/internal/timer"
)

const (
	EntriesSheet = "Entries"
	SummarySheet = "Summary"
)

// WriteXLSX writes an "Entries" sheet with one row per entry and a
// "Summary" sheet with the per-category totals. Times are rendered in loc.
func WriteXLSX(w io.Writer, entries []domain.TimeEntry, sum stats.Summary, c stats.Classifier, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", EntriesSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := []any{"Title", "Category", "Start", "End", "Duration (s)", "Duration"}
	if err := writeRow(f, EntriesSheet, 1, header); err != nil {
		return err
	}
	if err := f.SetRowStyle(EntriesSheet, 1, 1, bold); err != nil {
		return err
	}
	for i, e := range entries {
		category := c.Uncategorized.Name
		if e.Category != nil {
			category = e.Category.Name
		}
		end, secs, clock := "", any(nil), "running"
		if e.End != nil {
			end = e.End.In(loc).Format(time.DateTime)
		}
		if e.DurationSec != nil {
			secs, clock = *e.DurationSec, timer.FormatClock(*e.DurationSec)
		}
		row := []any{e.Title, category, e.Start.In(loc).Format(time.DateTime), end, secs, clock}
		if err := writeRow(f, EntriesSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	if err := writeRow(f, SummarySheet, 1, []any{"Category", "Entries", "Total (s)", "Total", "Percent"}); err != nil {
		return err
	}
	if err := f.SetRowStyle(SummarySheet, 1, 1, bold); err != nil {
		return err
	}
	row := 2
	for _, cs := range sum.Categories {
		r := []any{cs.Name, cs.EntryCount, cs.TotalDuration, timer.FormatHoursMinutes(cs.TotalDuration), round1(cs.Percent)}
		if err := writeRow(f, SummarySheet, row, r); err != nil {
			return err
		}
		row++
	}
	footer := [][]any{
		{"Total", "", sum.TotalTime, timer.FormatHoursMinutes(sum.TotalTime), 100.0},
		{"Work/Study", "", sum.WorkStudyTime, timer.FormatHoursMinutes(sum.WorkStudyTime), round1(sum.WorkStudyPercent)},
		{"Unproductive", "", sum.UnproductiveTime, timer.FormatHoursMinutes(sum.UnproductiveTime), round1(stats.Percent(sum.UnproductiveTime, sum.TotalTime))},
	}
	if sum.TotalTime == 0 {
		footer[0][4] = 0.0
	}
	for _, r := range footer {
		if err := writeRow(f, SummarySheet, row, r); err != nil {
			return err
		}
		row++
	}
	return f.Write(w)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("export: %s row %d: %w", sheet, row, err)
	}
	return nil
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
