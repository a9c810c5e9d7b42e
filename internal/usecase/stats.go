package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"time-tracker/internal/domain"
	"time-tracker/internal/export"
	"time-tracker/internal/ports"
	"time-tracker/internal/stats"
)

// MaxWindowDays bounds the length of a reported or exported window.
const MaxWindowDays = 366

// Report is a reduced window of entries.
type Report struct {
	Window  stats.Window
	Summary stats.Summary
	Days    []stats.DayTotal
}

// StatsUseCase computes statistics over a user's finalized entries.
type StatsUseCase struct {
	Log      *slog.Logger
	Entries  ports.EntryStore
	Catalog  CatalogSource
	Location *time.Location
	Now      func() time.Time
}

// Weekly reports the current Monday-based week with a per-day breakdown.
func (uc *StatsUseCase) Weekly(ctx context.Context, userID string) (Report, error) {
	return uc.Range(ctx, userID, stats.Week(uc.Now().In(uc.Location)))
}

// Daily reports the calendar day containing day (today when zero).
func (uc *StatsUseCase) Daily(ctx context.Context, userID string, day time.Time) (Report, error) {
	if day.IsZero() {
		day = uc.Now()
	}
	return uc.Range(ctx, userID, stats.Day(day.In(uc.Location)))
}

// Range reports an arbitrary window.
func (uc *StatsUseCase) Range(ctx context.Context, userID string, w stats.Window) (Report, error) {
	if err := checkWindow(w); err != nil {
		return Report{}, err
	}
	entries, err := uc.Entries.ListRange(ctx, userID, w.From, w.To)
	if err != nil {
		return Report{}, err
	}
	c := uc.Catalog.Get().Classifier()
	r := Report{
		Window:  w,
		Summary: stats.Reduce(entries, w.Keep, c),
		Days:    stats.DailyBreakdown(entries, w, c),
	}
	uc.Log.Debug("statistics computed",
		slog.String("user_id", userID),
		slog.Time("from", w.From),
		slog.Time("to", w.To),
		slog.Int("entries", len(entries)),
	)
	return r, nil
}

// Export writes the window's entries and summary as an XLSX workbook.
func (uc *StatsUseCase) Export(ctx context.Context, userID string, w stats.Window, out io.Writer) error {
	if err := checkWindow(w); err != nil {
		return err
	}
	entries, err := uc.Entries.ListRange(ctx, userID, w.From, w.To)
	if err != nil {
		return err
	}
	c := uc.Catalog.Get().Classifier()
	return export.WriteXLSX(out, entries, stats.Reduce(entries, w.Keep, c), c, uc.Location)
}

func checkWindow(w stats.Window) error {
	if !w.From.Before(w.To) {
		return domain.Invalid("window start must be before its end")
	}
	if w.To.After(w.From.AddDate(0, 0, MaxWindowDays)) {
		return domain.Invalid("window may span at most %d days", MaxWindowDays)
	}
	return nil
}
