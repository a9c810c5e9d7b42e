package domain

import "time"

// TimeEntry is one tracked work session owned by a user.
// An entry with a nil End is open; it is finalized exactly once on stop.
type TimeEntry struct {
	ID          string
	UserID      string
	Title       string
	CategoryID  *string
	Category    *Category // populated by list queries that join categories
	Start       time.Time
	End         *time.Time
	DurationSec *int64
	PausedAt    *time.Time    // non-nil while the running timer is paused
	ResumedAt   *time.Time    // end of the latest completed pause
	Paused      time.Duration // pause time accumulated by completed pauses
	CreatedAt   time.Time
}

// IsOpen reports whether the entry has not been finalized yet.
func (e TimeEntry) IsOpen() bool { return e.End == nil }

// IsPaused reports whether the entry is open and currently paused.
func (e TimeEntry) IsPaused() bool { return e.End == nil && e.PausedAt != nil }

// ElapsedAt returns the worked seconds between Start and at, excluding pauses.
// It is derived from absolute timestamps only, so repeated calls for the
// same instant always agree. Pauses are subtracted at full precision and the
// result is floored once.
func (e TimeEntry) ElapsedAt(at time.Time) int64 {
	if e.End != nil && at.After(*e.End) {
		at = *e.End
	}
	paused := e.Paused
	if e.PausedAt != nil && at.After(*e.PausedAt) {
		paused += at.Sub(*e.PausedAt)
	}
	worked := at.Sub(e.Start) - paused
	if worked < 0 {
		return 0
	}
	return int64(worked / time.Second)
}

// LastMark returns the latest lifecycle instant of an open entry: its start,
// its latest resume, or the pause in progress. Later transitions may not
// precede it.
func (e TimeEntry) LastMark() time.Time {
	mark := e.Start
	for _, t := range []*time.Time{e.ResumedAt, e.PausedAt} {
		if t != nil && t.After(mark) {
			mark = *t
		}
	}
	return mark
}

// CategoryName returns the joined category's name, or "" when uncategorized.
func (e TimeEntry) CategoryName() string {
	if e.Category == nil {
		return ""
	}
	return e.Category.Name
}
