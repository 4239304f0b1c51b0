package submit

import (
	"context"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/remote"
)

// Sink is one delivery target for a finished session.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, entry model.WorkLogEntry, session model.TimerSession) error
}

// RemoteSink posts entries to the backend timesheet endpoint.
type RemoteSink struct {
	client *remote.Client
}

func NewRemoteSink(client *remote.Client) *RemoteSink {
	return &RemoteSink{client: client}
}

func (s *RemoteSink) Name() string { return "remote" }

func (s *RemoteSink) Deliver(ctx context.Context, entry model.WorkLogEntry, _ model.TimerSession) error {
	return s.client.SubmitTimesheet(ctx, entry)
}

// UnavailableSink always fails with err. It stands in for a sink that could
// not be set up, so the attempt is still counted.
type UnavailableSink struct {
	name string
	err  error
}

func NewUnavailableSink(name string, err error) *UnavailableSink {
	return &UnavailableSink{name: name, err: err}
}

func (s *UnavailableSink) Name() string { return s.name }

func (s *UnavailableSink) Deliver(context.Context, model.WorkLogEntry, model.TimerSession) error {
	return s.err
}
