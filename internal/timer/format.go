package timer

import "fmt"

// FormatClock renders seconds as HH:MM:SS. Hours are not capped at 24.
func FormatClock(sec int64) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}

// FormatHoursMinutes renders seconds as "3h 25m".
func FormatHoursMinutes(sec int64) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%dh %dm", sec/3600, (sec%3600)/60)
}

// FormatHours renders the whole hours in seconds, e.g. "1 hour", "5 hours".
func FormatHours(sec int64) string {
	h := sec / 3600
	if h < 0 {
		h = 0
	}
	if h == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", h)
}
