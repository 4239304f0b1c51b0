package timer

import (
	"time"

	"github.com/Tiliavir/worktimer/internal/model"
)

// EventType defines the type of engine event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventTick        EventType = "tick"
	EventRollover    EventType = "rollover"
)

// Event is an engine update for observers. Session is a snapshot taken after
// the change; for EventRollover it is the discarded session.
type Event struct {
	Type    EventType
	Action  Action
	Session model.TimerSession
	At      time.Time
}

// DisplayState is what a UI polls once per second.
type DisplayState struct {
	EmployeeID       string      `json:"employee_id"`
	Date             string      `json:"date"`
	State            model.State `json:"state"`
	ElapsedSeconds   int64       `json:"elapsed_seconds"`
	ElapsedFormatted string      `json:"elapsed_formatted"`
	Ended            bool        `json:"ended"`
	CanStart         bool        `json:"can_start"`
	CanTakeBreak     bool        `json:"can_take_break"`
	CanEndBreak      bool        `json:"can_end_break"`
	CanLogOut        bool        `json:"can_log_out"`
}
