package submit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/model"
)

// ErrSessionNotEnded is returned when submitting a session that has not been
// logged out.
var ErrSessionNotEnded = errors.New("session has not been logged out")

// Session is the part of the timer engine a submission needs.
type Session interface {
	Session() model.TimerSession
	Clear(ctx context.Context) error
}

// Result reports a submission attempt.
type Result struct {
	Outcome   Outcome
	Entry     model.WorkLogEntry
	RemoteErr error
	LocalErr  error
	// ClearErr is set when the entry was delivered but the stored session
	// could not be removed.
	ClearErr error
}

// Submitter delivers finished sessions to the remote and local sinks.
type Submitter struct {
	remote  Sink
	local   Sink
	timeout time.Duration
	clock   func() time.Time
	logger  *zap.Logger
}

// Options configures a Submitter.
type Options struct {
	// Timeout bounds each sink. Zero means no limit beyond ctx.
	Timeout time.Duration
	Clock   func() time.Time
	Logger  *zap.Logger
}

func New(remote, local Sink, opts Options) *Submitter {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Submitter{
		remote:  remote,
		local:   local,
		timeout: opts.Timeout,
		clock:   opts.Clock,
		logger:  opts.Logger,
	}
}

// Submit builds the work log entry for a logged out session and delivers it
// to both sinks concurrently. The result is computed after both have
// finished. The stored session is cleared only when at least one sink
// succeeded; otherwise it is left in place for a retry.
func (s *Submitter) Submit(ctx context.Context, sess Session, employeeName, blockers string) (Result, error) {
	session := sess.Session()
	if !session.Ended() {
		return Result{}, ErrSessionNotEnded
	}

	entry := BuildEntry(session, employeeName, blockers, s.clock())
	res := Result{Entry: entry}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.RemoteErr = s.deliver(ctx, s.remote, entry, session)
	}()
	go func() {
		defer wg.Done()
		res.LocalErr = s.deliver(ctx, s.local, entry, session)
	}()
	wg.Wait()

	res.Outcome = combine(res.RemoteErr == nil, res.LocalErr == nil)
	s.logger.Info("work log submitted",
		zap.String("employee_id", entry.EmployeeID),
		zap.String("date", entry.Date),
		zap.String("entry_id", entry.ID),
		zap.Stringer("outcome", res.Outcome),
	)

	if res.Outcome.Delivered() {
		if err := sess.Clear(ctx); err != nil {
			res.ClearErr = err
			s.logger.Warn("could not clear delivered session",
				zap.String("employee_id", entry.EmployeeID),
				zap.String("date", entry.Date),
				zap.Error(err),
			)
		}
	}
	return res, nil
}

// deliver runs one sink, turning a panic into an error.
func (s *Submitter) deliver(ctx context.Context, sink Sink, entry model.WorkLogEntry, session model.TimerSession) (err error) {
	if sink == nil {
		return errors.New("sink not configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s sink panicked: %v", sink.Name(), r)
		}
		if err != nil {
			s.logger.Warn("sink failed", zap.String("sink", sink.Name()), zap.Error(err))
		}
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return sink.Deliver(ctx, entry, session)
}
