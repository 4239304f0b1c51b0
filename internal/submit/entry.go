package submit

import (
	"strings"
	"time"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// BuildEntry summarizes a logged out session. Empty blockers are stored as nil.
func BuildEntry(session model.TimerSession, employeeName, blockers string, now time.Time) model.WorkLogEntry {
	end := now
	if session.EndedAt != nil {
		end = *session.EndedAt
	}
	start := end.Add(-time.Duration(session.ElapsedSeconds) * time.Second)
	if session.WorkStartedAt != nil {
		start = *session.WorkStartedAt
	}

	entry := model.WorkLogEntry{
		ID:              timecalc.GenerateID(end),
		EmployeeID:      session.EmployeeID,
		EmployeeName:    employeeName,
		Date:            session.Date,
		DurationSeconds: session.ElapsedSeconds,
		Duration:        timecalc.FormatDurationHHMMSS(session.ElapsedSeconds),
		StartTime:       start,
		EndTime:         end,
	}
	if b := strings.TrimSpace(blockers); b != "" {
		entry.Blockers = &b
	}
	return entry
}
