package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"time-tracker/internal/domain"
	"time-tracker/internal/stats"
)

func TestWriteXLSX(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := t0.Add(125 * time.Second)
	d := int64(125)
	work := &domain.Category{ID: "w", Name: "Work"}
	entries := []domain.TimeEntry{
		{Title: "Writing", Start: t0, End: &end, DurationSec: &d, CategoryID: &work.ID, Category: work},
		{Title: "Open", Start: t0.Add(time.Hour)},
	}
	c := stats.Classifier{Productive: []string{"Work"}, Uncategorized: stats.Display{Name: "Uncategorized"}}
	sum := stats.Reduce(entries, nil, c)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, entries, sum, c, time.UTC))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(EntriesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Title", rows[0][0])
	assert.Equal(t, []string{"Writing", "Work", "2025-03-10 09:00:00", "2025-03-10 09:02:05", "125", "00:02:05"}, rows[1])
	assert.Equal(t, "Uncategorized", rows[2][1])
	assert.Equal(t, "running", rows[2][5])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(summary), 5)
	assert.Equal(t, "Work", summary[1][0])
	assert.Equal(t, "Total", summary[2][0])
	assert.Equal(t, "125", summary[2][2])
}
