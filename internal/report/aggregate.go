package report

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// Report is the computed performance overview.
type Report struct {
	Range       Range                   `json:"range" yaml:"range"`
	From        string                  `json:"from,omitempty" yaml:"from,omitempty"`
	To          string                  `json:"to" yaml:"to"`
	GeneratedAt time.Time               `json:"generated_at" yaml:"generated_at"`
	Employees   []model.EmployeeMetrics `json:"employees" yaml:"employees"`
}

// Aggregate computes per-employee metrics over ds for range r evaluated at
// now. Employees appear in dataset order, followed by IDs that only occur in
// records, sorted.
func Aggregate(ds model.Dataset, r Range, now time.Time) Report {
	w := Resolve(r, now)
	months := float64(MonthsElapsed(r, now))

	byID := map[string]*model.EmployeeMetrics{}
	var order []string
	get := func(id string) *model.EmployeeMetrics {
		if m, ok := byID[id]; ok {
			return m
		}
		m := &model.EmployeeMetrics{EmployeeID: id, EmployeeName: id}
		byID[id] = m
		order = append(order, id)
		return m
	}
	for _, e := range ds.Employees {
		m := get(e.ID)
		if e.Name != "" {
			m.EmployeeName = e.Name
		}
	}
	known := len(order)

	attended := map[string]map[string]bool{}
	for _, a := range ds.Attendance {
		if strings.EqualFold(a.Status, "absent") {
			continue
		}
		date, ok := w.Contains(a.Date)
		if !ok {
			continue
		}
		if attended[a.EmployeeID] == nil {
			attended[a.EmployeeID] = map[string]bool{}
		}
		attended[a.EmployeeID][date] = true
		get(a.EmployeeID)
	}
	for id, days := range attended {
		byID[id].TotalAttendanceDays = len(days)
	}

	for _, l := range ds.Leaves {
		if !strings.EqualFold(l.Status, "approved") {
			continue
		}
		start, ok := w.Contains(l.StartDate)
		if !ok {
			continue
		}
		get(l.EmployeeID).TotalLeaveDays += leaveDays(l, start)
	}

	for _, t := range ds.Tasks {
		if _, ok := w.Contains(t.CreatedAt); !ok {
			continue
		}
		m := get(t.AssigneeID)
		m.TasksTotal++
		if taskDone(t.Status) {
			m.TasksCompleted++
		}
	}

	extra := order[known:]
	sort.Strings(extra)

	out := make([]model.EmployeeMetrics, 0, len(order))
	for _, id := range order {
		m := byID[id]
		m.AvgAttendancePerMonth = round2(float64(m.TotalAttendanceDays) / months)
		m.TotalLeaveDays = round2(m.TotalLeaveDays)
		m.AvgLeavePerMonth = round2(m.TotalLeaveDays / months)
		if m.TasksTotal > 0 {
			m.CompletionRate = round2(float64(m.TasksCompleted) / float64(m.TasksTotal) * 100)
		}
		out = append(out, *m)
	}

	return Report{
		Range:       r,
		From:        w.From,
		To:          w.To,
		GeneratedAt: now,
		Employees:   out,
	}
}

// leaveDays uses the recorded day count, otherwise the inclusive span of the
// leave's dates.
func leaveDays(l model.LeaveRecord, start string) float64 {
	if l.Days > 0 {
		return l.Days
	}
	end, ok := timecalc.NormalizeDate(l.EndDate)
	if !ok {
		return 1
	}
	from, err1 := time.Parse(timecalc.DateLayout, start)
	to, err2 := time.Parse(timecalc.DateLayout, end)
	if err1 != nil || err2 != nil || to.Before(from) {
		return 1
	}
	return to.Sub(from).Hours()/24 + 1
}

func taskDone(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed", "done":
		return true
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
