package timer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// Run drives the engine until ctx is done: every tick credits elapsed time
// and a timer armed for the next local midnight rolls the session over.
// The midnight delay is recomputed each time the timer is armed.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.opts.TickInterval)
	defer ticker.Stop()

	midnight := time.NewTimer(timecalc.UntilMidnight(e.now()))
	defer midnight.Stop()

	rearm := func() {
		if !midnight.Stop() {
			select {
			case <-midnight.C:
			default:
			}
		}
		midnight.Reset(timecalc.UntilMidnight(e.now()))
	}

	for {
		select {
		case <-ctx.Done():
			if err := e.Flush(context.WithoutCancel(ctx)); err != nil {
				e.opts.Logger.Warn("final flush failed", zap.String("employee_id", e.employeeID), zap.Error(err))
			}
			return
		case <-ticker.C:
			if e.dayChanged() {
				e.Rollover(ctx)
				rearm()
				continue
			}
			e.CatchUp(ctx)
		case <-midnight.C:
			if e.dayChanged() {
				e.Rollover(ctx)
			}
			midnight.Reset(timecalc.UntilMidnight(e.now()))
		}
	}
}

// dayChanged reports whether the clock has moved past the session's date,
// e.g. after the machine slept through midnight.
func (e *Engine) dayChanged() bool {
	now := e.now()
	e.mu.Lock()
	date := e.session.Date
	e.mu.Unlock()
	day, err := time.ParseInLocation(timecalc.DateLayout, date, now.Location())
	return err != nil || !timecalc.SameDay(day, now)
}
