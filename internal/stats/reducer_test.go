package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"time-tracker/internal/domain"
)

var testClassifier = Classifier{
	Productive:    []string{"Work", "Study"},
	Unproductive:  []string{"Rest", "Other"},
	Uncategorized: Display{Name: "Uncategorized", Icon: "📝", Color: "#6B7280"},
}

func dur(d int64) *int64 { return &d }

func entry(cat *domain.Category, start time.Time, d int64) domain.TimeEntry {
	e := domain.TimeEntry{Title: "x", Start: start, DurationSec: dur(d), Category: cat}
	if cat != nil {
		e.CategoryID = &cat.ID
	}
	return e
}

func TestReduceWorkAndRest(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	work := &domain.Category{ID: "w", Name: "Work", Icon: "💼", Color: "#EF4444"}
	rest := &domain.Category{ID: "r", Name: "Rest", Icon: "🎮", Color: "#8B5CF6"}

	sum := Reduce([]domain.TimeEntry{
		entry(work, t0, 200),
		entry(rest, t0.Add(time.Hour), 100),
		entry(work, t0.Add(2*time.Hour), 100),
	}, nil, testClassifier)

	assert.Equal(t, int64(400), sum.TotalTime)
	require.Len(t, sum.Categories, 2)
	require.NotNil(t, sum.MostUsed)
	assert.Equal(t, "Work", sum.MostUsed.Name)
	assert.Equal(t, int64(300), sum.MostUsed.TotalDuration)
	assert.Equal(t, 2, sum.MostUsed.EntryCount)
	require.NotNil(t, sum.LeastUsed)
	assert.Equal(t, "Rest", sum.LeastUsed.Name)
	assert.Equal(t, int64(300), sum.WorkStudyTime)
	assert.Equal(t, int64(100), sum.UnproductiveTime)
	assert.InDelta(t, 75.0, sum.WorkStudyPercent, 1e-9)
	assert.InDelta(t, 75.0, sum.Categories[0].Percent, 1e-9)
	assert.InDelta(t, 400.0/3, sum.AverageSession, 1e-9)
	assert.InDelta(t, 100.0, sum.MedianSession, 1e-9)
}

func TestReduceTotalEqualsCategorySum(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cats := []*domain.Category{
		{ID: "a", Name: "Work"}, {ID: "b", Name: "Study"}, {ID: "c", Name: "Sport"}, nil,
	}
	var entries []domain.TimeEntry
	for i := 0; i < 37; i++ {
		entries = append(entries, entry(cats[i%len(cats)], t0.Add(time.Duration(i)*time.Minute), int64(i*13+1)))
	}
	sum := Reduce(entries, nil, testClassifier)

	var total int64
	var count int
	for _, c := range sum.Categories {
		total += c.TotalDuration
		count += c.EntryCount
	}
	assert.Equal(t, sum.TotalTime, total)
	assert.Equal(t, len(entries), count)

	// Reversed input yields the same summary.
	reversed := make([]domain.TimeEntry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	assert.Equal(t, sum, Reduce(reversed, nil, testClassifier))
}

func TestReduceEdgeCases(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		sum := Reduce(nil, nil, testClassifier)
		assert.Zero(t, sum.TotalTime)
		assert.Nil(t, sum.MostUsed)
		assert.Nil(t, sum.LeastUsed)
		assert.Equal(t, 0.0, sum.WorkStudyPercent)
		assert.Empty(t, sum.Categories)
	})

	t.Run("single category has no least used", func(t *testing.T) {
		sum := Reduce([]domain.TimeEntry{entry(nil, t0, 10)}, nil, testClassifier)
		require.NotNil(t, sum.MostUsed)
		assert.Equal(t, "Uncategorized", sum.MostUsed.Name)
		assert.Equal(t, "📝", sum.MostUsed.Icon)
		assert.Nil(t, sum.LeastUsed)
	})

	t.Run("open entries skipped", func(t *testing.T) {
		open := domain.TimeEntry{Title: "running", Start: t0}
		sum := Reduce([]domain.TimeEntry{open, entry(nil, t0, 5)}, nil, testClassifier)
		assert.Equal(t, int64(5), sum.TotalTime)
		assert.Equal(t, 1, sum.Categories[0].EntryCount)
	})

	t.Run("zero durations", func(t *testing.T) {
		sum := Reduce([]domain.TimeEntry{entry(nil, t0, 0)}, nil, testClassifier)
		assert.Equal(t, 0.0, sum.Categories[0].Percent)
	})

	t.Run("window filter", func(t *testing.T) {
		w := Day(t0)
		sum := Reduce([]domain.TimeEntry{
			entry(nil, t0, 10),
			entry(nil, t0.AddDate(0, 0, 1), 20),
		}, w.Keep, testClassifier)
		assert.Equal(t, int64(10), sum.TotalTime)
	})

	t.Run("matching ignores case", func(t *testing.T) {
		sum := Reduce([]domain.TimeEntry{entry(&domain.Category{Name: "work"}, t0, 10)}, nil, testClassifier)
		assert.Equal(t, int64(10), sum.WorkStudyTime)
	})
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.Equal(t, 0.0, Percent(10, 0))
	assert.Equal(t, 50.0, Percent(1, 2))
}
