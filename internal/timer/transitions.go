package timer

import "github.com/Tiliavir/worktimer/internal/model"

// Action is an input to the timer state machine.
type Action string

const (
	ActionStart     Action = "start"
	ActionTick      Action = "tick"
	ActionTakeBreak Action = "take_break"
	ActionEndBreak  Action = "end_break"
	ActionLogOut    Action = "log_out"
)

var transitions = map[model.State]map[Action]model.State{
	model.StateStopped: {
		ActionStart: model.StateRunning,
	},
	model.StateRunning: {
		ActionTick:      model.StateRunning,
		ActionTakeBreak: model.StatePaused,
		ActionLogOut:    model.StateStopped,
	},
	model.StatePaused: {
		ActionEndBreak: model.StateRunning,
		ActionLogOut:   model.StateStopped,
	},
}

// Next returns the state reached by applying action in state, and false when
// the action is not legal there. An ended session accepts nothing.
func Next(state model.State, action Action, ended bool) (model.State, bool) {
	if ended {
		return state, false
	}
	next, ok := transitions[state][action]
	if !ok {
		return state, false
	}
	return next, true
}
