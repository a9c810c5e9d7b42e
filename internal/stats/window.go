package stats

import (
	"time"

	"time-tracker/internal/domain"
)

// Window is the half-open interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Keep accepts entries that started inside the window.
func (w Window) Keep(e domain.TimeEntry) bool { return w.Contains(e.Start) }

// Day returns the calendar day containing t, in t's location.
func Day(t time.Time) Window {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return Window{From: start, To: start.AddDate(0, 0, 1)}
}

// Week returns the Monday-based week containing t, in t's location.
func Week(t time.Time) Window {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}
	monday := Day(t).From.AddDate(0, 0, -offset+1)
	return Window{From: monday, To: monday.AddDate(0, 0, 7)}
}

// DayTotal is the finalized time of one calendar day.
type DayTotal struct {
	Date       time.Time
	Total      int64
	ByCategory map[string]int64
}

// DailyBreakdown returns one DayTotal per calendar day in w, in order, in
// the location of w.From. Days without entries are present with zero totals.
func DailyBreakdown(entries []domain.TimeEntry, w Window, c Classifier) []DayTotal {
	loc := w.From.Location()
	var days []DayTotal
	index := make(map[string]int)
	for d := Day(w.From).From; d.Before(w.To); d = d.AddDate(0, 0, 1) {
		index[d.Format("2006-01-02")] = len(days)
		days = append(days, DayTotal{Date: d, ByCategory: map[string]int64{}})
	}
	for _, e := range entries {
		if e.DurationSec == nil || !w.Contains(e.Start) {
			continue
		}
		i, ok := index[e.Start.In(loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		name := c.Uncategorized.Name
		if e.Category != nil {
			name = e.Category.Name
		}
		days[i].Total += *e.DurationSec
		days[i].ByCategory[name] += *e.DurationSec
	}
	return days
}
