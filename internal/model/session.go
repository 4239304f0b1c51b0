package model

import "time"

// State is the lifecycle state of a day's work timer.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case StateStopped, StateRunning, StatePaused:
		return true
	}
	return false
}

// TimerSession is one employee's work timer for one calendar day.
type TimerSession struct {
	EmployeeID     string `json:"employee_id"`
	Date           string `json:"date"` // YYYY-MM-DD, employee's local day
	State          State  `json:"state"`
	ElapsedSeconds int64  `json:"elapsed_seconds"`
	// StartedAt is the start of the current running segment; nil unless running.
	StartedAt *time.Time `json:"started_at"`
	// PausedAtElapsed is ElapsedSeconds captured when the current break began.
	PausedAtElapsed *int64 `json:"paused_at_elapsed"`

	WorkStartedAt *time.Time `json:"work_started_at"`
	// EndedAt is set by log out and makes the session terminal for Date.
	EndedAt    *time.Time `json:"ended_at"`
	LastTickAt *time.Time `json:"last_tick_at"`
}

// NewSession returns the fresh stopped session for employeeID on date.
func NewSession(employeeID, date string) TimerSession {
	return TimerSession{
		EmployeeID: employeeID,
		Date:       date,
		State:      StateStopped,
	}
}

// Ended reports whether the session was closed by log out.
func (s TimerSession) Ended() bool {
	return s.EndedAt != nil
}
