package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// ErrUnknownRange is returned for a range name other than all, today, week,
// month or year.
var ErrUnknownRange = errors.New("unknown report range")

// Range selects which records a report covers. Every range ends now.
type Range string

const (
	RangeAll   Range = "all"
	RangeToday Range = "today"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
)

// Ranges lists the accepted range names.
var Ranges = []Range{RangeAll, RangeToday, RangeWeek, RangeMonth, RangeYear}

// ParseRange accepts a range name case-insensitively. Empty means all.
func ParseRange(s string) (Range, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RangeAll, nil
	}
	for _, r := range Ranges {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w %q (want all, today, week, month or year)", ErrUnknownRange, s)
}

// Window is a resolved range as inclusive YYYY-MM-DD bounds.
type Window struct {
	Range Range
	// From is empty for RangeAll.
	From string
	To   string
}

// Resolve computes the window for r evaluated at now. Weeks start on Monday.
func Resolve(r Range, now time.Time) Window {
	w := Window{Range: r, To: timecalc.DateKey(now)}
	switch r {
	case RangeToday:
		w.From = timecalc.DateKey(timecalc.StartOfDay(now))
	case RangeWeek:
		w.From = timecalc.DateKey(timecalc.WeekStart(now))
	case RangeMonth:
		w.From = timecalc.DateKey(timecalc.MonthStart(now))
	case RangeYear:
		w.From = timecalc.DateKey(timecalc.YearStart(now))
	}
	return w
}

// Contains reports whether the raw date falls inside the window. RangeAll
// accepts every record and returns the raw value when it cannot be
// normalized. Other ranges exclude such dates.
func (w Window) Contains(raw string) (string, bool) {
	date, ok := timecalc.NormalizeDate(raw)
	if w.Range == RangeAll {
		if !ok {
			return raw, true
		}
		return date, true
	}
	if !ok {
		return "", false
	}
	return date, date >= w.From && date <= w.To
}

// MonthsElapsed is the divisor for the per-month averages: the number of
// calendar months so far this year for all and year, otherwise 1.
func MonthsElapsed(r Range, now time.Time) int {
	switch r {
	case RangeAll, RangeYear:
		return int(now.Month())
	default:
		return 1
	}
}
