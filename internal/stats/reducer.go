// Package stats reduces time entries into per-category totals and the
// productive/unproductive split shown on the statistics pages.
package stats

import (
	"sort"
	"strings"

	mstats "github.com/montanaflynn/stats"

	"time-tracker/internal/domain"
)

// CategoryStat is the aggregate of one category inside a window.
type CategoryStat struct {
	Name          string
	Icon          string
	Color         string
	TotalDuration int64
	EntryCount    int
	Percent       float64
}

// Summary is the result of Reduce. MostUsed is nil when there are no
// categories; LeastUsed is nil unless there are at least two.
type Summary struct {
	TotalTime        int64
	Categories       []CategoryStat
	MostUsed         *CategoryStat
	LeastUsed        *CategoryStat
	WorkStudyTime    int64
	WorkStudyPercent float64
	UnproductiveTime int64
	AverageSession   float64
	MedianSession    float64
}

// Display is the name/icon/color used for entries without a category.
type Display struct {
	Name  string `yaml:"name"`
	Icon  string `yaml:"icon"`
	Color string `yaml:"color"`
}

// Classifier splits category names into productive and unproductive buckets
// by fixed, case-insensitive name matching.
type Classifier struct {
	Productive    []string
	Unproductive  []string
	Uncategorized Display
}

func (c Classifier) IsProductive(name string) bool   { return containsFold(c.Productive, name) }
func (c Classifier) IsUnproductive(name string) bool { return containsFold(c.Unproductive, name) }

func containsFold(list []string, name string) bool {
	for _, n := range list {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// Reduce aggregates finalized entries accepted by keep (nil keeps all).
// Open entries carry no duration and are skipped. The result does not
// depend on input order.
func Reduce(entries []domain.TimeEntry, keep func(domain.TimeEntry) bool, c Classifier) Summary {
	var (
		sum       Summary
		byName    = make(map[string]*CategoryStat)
		durations []float64
	)
	for _, e := range entries {
		if e.DurationSec == nil {
			continue
		}
		if keep != nil && !keep(e) {
			continue
		}
		d := *e.DurationSec
		sum.TotalTime += d
		durations = append(durations, float64(d))

		name, icon, color := c.Uncategorized.Name, c.Uncategorized.Icon, c.Uncategorized.Color
		if e.Category != nil {
			name, icon, color = e.Category.Name, e.Category.Icon, e.Category.Color
		}
		switch {
		case c.IsProductive(name):
			sum.WorkStudyTime += d
		case c.IsUnproductive(name):
			sum.UnproductiveTime += d
		}

		st, ok := byName[name]
		if !ok {
			st = &CategoryStat{Name: name, Icon: icon, Color: color}
			byName[name] = st
		}
		st.TotalDuration += d
		st.EntryCount++
	}

	sum.Categories = make([]CategoryStat, 0, len(byName))
	for _, st := range byName {
		st.Percent = Percent(st.TotalDuration, sum.TotalTime)
		sum.Categories = append(sum.Categories, *st)
	}
	sort.Slice(sum.Categories, func(i, j int) bool {
		a, b := sum.Categories[i], sum.Categories[j]
		if a.TotalDuration != b.TotalDuration {
			return a.TotalDuration > b.TotalDuration
		}
		return a.Name < b.Name
	})
	if n := len(sum.Categories); n > 0 {
		most := sum.Categories[0]
		sum.MostUsed = &most
		if n > 1 {
			least := sum.Categories[n-1]
			sum.LeastUsed = &least
		}
	}
	sum.WorkStudyPercent = Percent(sum.WorkStudyTime, sum.TotalTime)

	if len(durations) > 0 {
		// Both only fail on empty input.
		sum.AverageSession, _ = mstats.Mean(durations)
		sum.MedianSession, _ = mstats.Median(durations)
	}
	return sum
}

// Percent returns part as a percentage of total, or 0 when total is 0.
func Percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
