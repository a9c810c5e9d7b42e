package usecase

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"time-tracker/internal/domain"
	"time-tracker/internal/stats"
)

func track(t *testing.T, f *fixture, userID, title string, categoryID *string, start time.Time, d time.Duration) {
	t.Helper()
	ctx := context.Background()
	e, err := f.entries.Create(ctx, userID, title, categoryID, &start)
	require.NoError(t, err)
	end := start.Add(d)
	_, err = f.entries.Stop(ctx, userID, e.ID, &end)
	require.NoError(t, err)
}

func TestWeeklyReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	u, cats := registerAnn(t, f)
	work, rest := cats["Work"].ID, cats["Rest"].ID

	monday := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	track(t, f, u.ID, "Report", &work, monday, 2*time.Hour)
	track(t, f, u.ID, "Games", &rest, monday.Add(3*time.Hour), time.Hour)
	track(t, f, u.ID, "Misc", nil, monday.AddDate(0, 0, 1), 30*time.Minute)
	// previous week
	track(t, f, u.ID, "Old", &work, monday.AddDate(0, 0, -2), time.Hour)

	r, err := f.stats.Weekly(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, monday.Truncate(24*time.Hour), r.Window.From)
	assert.Equal(t, int64(12600), r.Summary.TotalTime)
	require.Len(t, r.Summary.Categories, 3)
	assert.Equal(t, "Work", r.Summary.MostUsed.Name)
	assert.Equal(t, "Uncategorized", r.Summary.LeastUsed.Name)
	assert.Equal(t, int64(7200), r.Summary.WorkStudyTime)
	assert.Equal(t, int64(3600), r.Summary.UnproductiveTime)
	require.Len(t, r.Days, 7)
	assert.Equal(t, int64(10800), r.Days[0].Total)
	assert.Equal(t, int64(1800), r.Days[1].Total)
}

func TestOpenEntriesAreExcluded(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	u, _ := registerAnn(t, f)

	_, err := f.entries.Create(ctx, u.ID, "Running", nil, nil)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	r, err := f.stats.Daily(ctx, u.ID, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, r.Summary.TotalTime)
	assert.Empty(t, r.Summary.Categories)
	assert.Nil(t, r.Summary.MostUsed)
}

func TestRangeWindowBounds(t *testing.T) {
	f := newFixture()
	now := f.clock.Now()
	tests := []struct {
		name string
		w    stats.Window
		ok   bool
	}{
		{"empty", stats.Window{From: now, To: now}, false},
		{"reversed", stats.Window{From: now, To: now.Add(-time.Hour)}, false},
		{"one year", stats.Window{From: now, To: now.AddDate(0, 0, MaxWindowDays)}, true},
		{"one day too long", stats.Window{From: now, To: now.AddDate(0, 0, MaxWindowDays+1)}, false},
		{"all of time", stats.Window{
			From: time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.stats.Range(context.Background(), "u", tt.w)
			var buf bytes.Buffer
			exportErr := f.stats.Export(context.Background(), "u", tt.w, &buf)
			if tt.ok {
				assert.NoError(t, err)
				assert.NoError(t, exportErr)
				return
			}
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.ErrorIs(t, exportErr, domain.ErrValidation)
		})
	}
}

func TestExportWritesWorkbook(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	u, cats := registerAnn(t, f)
	study := cats["Study"].ID
	track(t, f, u.ID, "Lecture", &study, time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC), 90*time.Minute)

	var buf bytes.Buffer
	w := stats.Week(f.clock.Now())
	require.NoError(t, f.stats.Export(ctx, u.ID, w, &buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Entries")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Lecture", rows[1][0])
}
