package timecalc

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day format used for session keys and report filters.
const DateLayout = "2006-01-02"

// GenerateID creates a unique ID based on timestamp and a random suffix.
func GenerateID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s", t.Format("20060102-150405"), suffix)
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatDurationHHMMSS formats seconds as HH:MM:SS.
func FormatDurationHHMMSS(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// DateKey returns t's calendar day as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekStart returns 00:00 of the most recent Monday on or before t.
func WeekStart(t time.Time) time.Time {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // Sunday is six days after Monday
	}
	return StartOfDay(t.AddDate(0, 0, -(wd - 1)))
}

// MonthStart returns 00:00 on the first of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// YearStart returns 00:00 on January 1 of t's year.
func YearStart(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// Midnight returns the start of the next day (midnight) in the same location.
func Midnight(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, t.Location())
}

// UntilMidnight returns the delay from t to the next local midnight.
// It must be recomputed whenever a timer is armed.
func UntilMidnight(t time.Time) time.Duration {
	return Midnight(t).Sub(t)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// fallbackLayouts are tried in order when a date is neither YYYY-MM-DD nor ISO-8601.
var fallbackLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	time.ANSIC,
}

// NormalizeDate reduces a record's date field to YYYY-MM-DD.
// A literal YYYY-MM-DD is returned as is and an ISO timestamp is cut at the "T".
// Anything else is parsed against fallbackLayouts. ok is false when nothing matched.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) == len(DateLayout) {
		if _, err := time.Parse(DateLayout, s); err == nil {
			return s, true
		}
	}
	if i := strings.Index(s, "T"); i > 0 {
		if _, err := time.Parse(DateLayout, s[:i]); err == nil {
			return s[:i], true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateKey(t), true
		}
	}
	return "", false
}
