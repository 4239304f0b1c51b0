package timer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/storage"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// Options contains runtime options for an Engine.
type Options struct {
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Location defines the employee's calendar day. Defaults to time.Local.
	Location *time.Location
	// SaveEvery persists every n-th tick while running. State changes are
	// always persisted. Defaults to 1.
	SaveEvery int
	// TickInterval is the Run loop period. Defaults to one second.
	TickInterval time.Duration
	Logger       *zap.Logger
}

// Engine owns one employee's daily work timer. Illegal transitions are
// ignored and reported as not applied. Every change is written to the
// repository; write failures are logged and kept in LastSaveError.
type Engine struct {
	mu          sync.Mutex
	employeeID  string
	repo        storage.Repository
	opts        Options
	session     model.TimerSession
	unsaved     int
	lastSaveErr error
	events      []chan Event
}

// New creates an Engine holding a fresh stopped session for today.
// Call Restore to pick up persisted state.
func New(employeeID string, repo storage.Repository, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.SaveEvery < 1 {
		opts.SaveEvery = 1
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	e := &Engine{
		employeeID: employeeID,
		repo:       repo,
		opts:       opts,
	}
	e.session = model.NewSession(employeeID, timecalc.DateKey(e.now()))
	return e
}

func (e *Engine) now() time.Time {
	return e.opts.Clock().In(e.opts.Location)
}

// EmployeeID returns the employee this engine tracks.
func (e *Engine) EmployeeID() string {
	return e.employeeID
}

// Restore loads today's session from the repository. Records of earlier days
// are discarded the way a missed midnight rollover would. A missing or
// unreadable record leaves a fresh stopped session. A running session is credited the
// whole seconds since it was last ticked.
func (e *Engine) Restore(ctx context.Context) error {
	now := e.now()
	date := timecalc.DateKey(now)

	if n, err := e.repo.ClearBefore(ctx, e.employeeID, date); err != nil {
		e.opts.Logger.Warn("could not clear timer state of earlier days",
			zap.String("employee_id", e.employeeID),
			zap.Error(err),
		)
	} else if n > 0 {
		e.opts.Logger.Warn("discarded unsubmitted sessions of earlier days",
			zap.String("employee_id", e.employeeID),
			zap.Int("sessions", n),
		)
	}

	stored, err := e.repo.Load(ctx, e.employeeID, date)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.session = model.NewSession(e.employeeID, date)
	e.unsaved = 0
	if err != nil {
		return err
	}
	if stored == nil {
		return nil
	}

	e.session = *stored
	e.session.EmployeeID = e.employeeID
	e.session.Date = date

	if n := e.catchUpLocked(now); n > 0 {
		e.opts.Logger.Debug("credited time since last save",
			zap.String("employee_id", e.employeeID),
			zap.Int("seconds", n),
		)
		e.persistLocked(ctx)
	}
	return nil
}

// Start begins the day's work. It is ignored unless the session is stopped
// and has not been logged out.
func (e *Engine) Start(ctx context.Context) bool {
	return e.apply(ctx, ActionStart)
}

// TakeBreak pauses a running session.
func (e *Engine) TakeBreak(ctx context.Context) bool {
	return e.apply(ctx, ActionTakeBreak)
}

// EndBreak resumes a paused session.
func (e *Engine) EndBreak(ctx context.Context) bool {
	return e.apply(ctx, ActionEndBreak)
}

// LogOut stops a running or paused session for good. The session stays
// stored until it is submitted or rolled over.
func (e *Engine) LogOut(ctx context.Context) bool {
	return e.apply(ctx, ActionLogOut)
}

func (e *Engine) apply(ctx context.Context, action Action) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := &e.session
	next, ok := Next(s.State, action, s.Ended())
	if !ok {
		return false
	}

	now := e.now()
	switch action {
	case ActionStart:
		s.StartedAt = &now
		s.LastTickAt = &now
		if s.WorkStartedAt == nil {
			s.WorkStartedAt = &now
		}
	case ActionTakeBreak:
		frozen := s.ElapsedSeconds
		s.PausedAtElapsed = &frozen
		s.StartedAt = nil
		s.LastTickAt = nil
	case ActionEndBreak:
		s.PausedAtElapsed = nil
		s.StartedAt = &now
		s.LastTickAt = &now
	case ActionLogOut:
		s.PausedAtElapsed = nil
		s.StartedAt = nil
		s.LastTickAt = nil
		s.EndedAt = &now
	}
	s.State = next

	e.persistLocked(ctx)
	e.emitLocked(Event{Type: EventStateChange, Action: action, Session: e.session, At: now})
	return true
}

// Tick adds one second of work. It is ignored unless the session is running.
func (e *Engine) Tick(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.tickLocked() {
		return false
	}
	e.afterTicksLocked(ctx, 1)
	return true
}

// CatchUp credits the whole seconds between the last tick and now and
// returns how many were added.
func (e *Engine) CatchUp(ctx context.Context) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.catchUpLocked(e.now())
	if n > 0 {
		e.afterTicksLocked(ctx, n)
	}
	return n
}

func (e *Engine) tickLocked() bool {
	s := &e.session
	next, ok := Next(s.State, ActionTick, s.Ended())
	if !ok {
		return false
	}
	s.ElapsedSeconds++
	var at time.Time
	if s.LastTickAt != nil {
		at = s.LastTickAt.Add(time.Second)
	} else {
		at = e.now()
	}
	s.LastTickAt = &at
	s.State = next
	return true
}

func (e *Engine) catchUpLocked(now time.Time) int {
	s := &e.session
	if s.State != model.StateRunning || s.LastTickAt == nil {
		return 0
	}
	due := int(now.Sub(*s.LastTickAt) / time.Second)
	n := 0
	for ; n < due; n++ {
		if !e.tickLocked() {
			break
		}
	}
	return n
}

func (e *Engine) afterTicksLocked(ctx context.Context, n int) {
	e.unsaved += n
	if e.unsaved >= e.opts.SaveEvery {
		e.persistLocked(ctx)
	}
	e.emitLocked(Event{Type: EventTick, Action: ActionTick, Session: e.session, At: e.now()})
}

// Rollover discards the current session, whatever its state, and starts a
// fresh stopped session for the current date. Unsubmitted time is lost.
func (e *Engine) Rollover(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	old := e.session
	now := e.now()

	if old.State != model.StateStopped || old.Ended() {
		e.opts.Logger.Warn("discarding unsubmitted session at midnight",
			zap.String("employee_id", e.employeeID),
			zap.String("date", old.Date),
			zap.String("state", string(old.State)),
			zap.Int64("elapsed_seconds", old.ElapsedSeconds),
		)
	}
	if err := e.repo.Clear(ctx, e.employeeID, old.Date); err != nil {
		e.opts.Logger.Warn("could not clear timer state at rollover",
			zap.String("employee_id", e.employeeID),
			zap.String("date", old.Date),
			zap.Error(err),
		)
	}

	e.session = model.NewSession(e.employeeID, timecalc.DateKey(now))
	e.unsaved = 0
	e.emitLocked(Event{Type: EventRollover, Session: old, At: now})
}

// Clear removes the stored session after it has been delivered and resets
// the engine to a fresh stopped session for today.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.repo.Clear(ctx, e.employeeID, e.session.Date); err != nil {
		return err
	}
	e.session = model.NewSession(e.employeeID, timecalc.DateKey(e.now()))
	e.unsaved = 0
	return nil
}

// Flush writes ticks held back by SaveEvery.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.unsaved == 0 {
		return nil
	}
	e.persistLocked(ctx)
	return e.lastSaveErr
}

func (e *Engine) persistLocked(ctx context.Context) {
	err := e.repo.Save(ctx, e.employeeID, e.session.Date, e.session)
	e.lastSaveErr = err
	if err != nil {
		e.opts.Logger.Warn("could not persist timer state",
			zap.String("employee_id", e.employeeID),
			zap.String("date", e.session.Date),
			zap.Error(err),
		)
		return
	}
	e.unsaved = 0
}

// LastSaveError returns the result of the most recent write.
func (e *Engine) LastSaveError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSaveErr
}

// Session returns a snapshot of the current session.
func (e *Engine) Session() model.TimerSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// DisplayState returns the state a UI renders, including which actions are
// currently legal.
func (e *Engine) DisplayState() DisplayState {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	can := func(a Action) bool {
		_, ok := Next(s.State, a, s.Ended())
		return ok
	}
	return DisplayState{
		EmployeeID:       s.EmployeeID,
		Date:             s.Date,
		State:            s.State,
		ElapsedSeconds:   s.ElapsedSeconds,
		ElapsedFormatted: timecalc.FormatDurationHHMMSS(s.ElapsedSeconds),
		Ended:            s.Ended(),
		CanStart:         can(ActionStart),
		CanTakeBreak:     can(ActionTakeBreak),
		CanEndBreak:      can(ActionEndBreak),
		CanLogOut:        can(ActionLogOut),
	}
}

// Subscribe registers a new observer channel. Events are dropped when the
// channel is full.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	e.events = append(e.events, ch)
	e.mu.Unlock()
	return ch
}

// Close closes all observer channels.
func (e *Engine) Close() {
	e.mu.Lock()
	events := e.events
	e.events = nil
	e.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (e *Engine) emitLocked(event Event) {
	for _, ch := range e.events {
		select {
		case ch <- event:
		default:
		}
	}
}
