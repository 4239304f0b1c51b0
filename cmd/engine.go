package cmd

import (
	"context"
	"errors"

	"github.com/Tiliavir/worktimer/internal/remote"
	"github.com/Tiliavir/worktimer/internal/report"
	"github.com/Tiliavir/worktimer/internal/submit"
	"github.com/Tiliavir/worktimer/internal/timer"
)

var errNoEmployee = errors.New("no employee configured: set employee.id in the config or pass --employee")

func timerOptions() timer.Options {
	// Validate has already checked the timezone.
	loc, _ := cfg.Timer.Location()
	return timer.Options{
		Location:  loc,
		SaveEvery: cfg.Timer.SaveEvery,
		Logger:    log,
	}
}

// loadEngine restores today's session for the configured employee.
func loadEngine(ctx context.Context) *timer.Engine {
	if cfg.Employee.ID == "" {
		exitWith(1, errNoEmployee)
	}
	e := timer.New(cfg.Employee.ID, repo, timerOptions())
	if err := e.Restore(ctx); err != nil {
		exitWith(2, err)
	}
	return e
}

func remoteClient(ctx context.Context) (*remote.Client, error) {
	ts := remote.NewTokenSource(ctx, &cfg.Remote, remote.TokenPath(cfg.Storage.Dir), log)
	return remote.NewClient(ctx, &cfg.Remote, ts, log)
}

func newSubmitter(ctx context.Context) *submit.Submitter {
	var remoteSink submit.Sink
	client, err := remoteClient(ctx)
	if err != nil {
		remoteSink = submit.NewUnavailableSink("remote", err)
	} else {
		remoteSink = submit.NewRemoteSink(client)
	}
	return submit.New(remoteSink, submit.NewFileSink(cfg.Export.Dir, nil), submit.Options{
		Timeout: cfg.Remote.Timeout,
		Logger:  log,
	})
}

// reportSource reads from input when given, otherwise from the backend.
func reportSource(ctx context.Context, input string) (report.Source, error) {
	if input != "" {
		return report.FileSource{Path: input}, nil
	}
	return remoteClient(ctx)
}
