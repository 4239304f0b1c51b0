package submit_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/config"
	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/remote"
	"github.com/Tiliavir/worktimer/internal/storage"
	"github.com/Tiliavir/worktimer/internal/submit"
	"github.com/Tiliavir/worktimer/internal/timer"
)

type fakeSink struct {
	name    string
	err     error
	delay   time.Duration
	calls   atomic.Int32
	done    atomic.Bool
	panicky bool
}

func (s *fakeSink) Name() string { return s.name }

func (s *fakeSink) Deliver(ctx context.Context, _ model.WorkLogEntry, _ model.TimerSession) error {
	s.calls.Add(1)
	if s.panicky {
		panic("boom")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.done.Store(true)
	return s.err
}

var june1 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// loggedOutEngine runs the employee 101 workday: 10s, a break, 20s, log out.
func loggedOutEngine(t *testing.T, repo storage.Repository) *timer.Engine {
	t.Helper()
	ctx := context.Background()
	now := june1
	e := timer.New("101", repo, timer.Options{
		Clock:    func() time.Time { return now },
		Location: time.UTC,
		Logger:   zap.NewNop(),
	})
	e.Start(ctx)
	for i := 0; i < 10; i++ {
		e.Tick(ctx)
	}
	e.TakeBreak(ctx)
	for i := 0; i < 5; i++ {
		e.Tick(ctx)
	}
	e.EndBreak(ctx)
	for i := 0; i < 20; i++ {
		e.Tick(ctx)
	}
	now = june1.Add(time.Minute)
	e.LogOut(ctx)
	if s := e.Session(); !s.Ended() || s.ElapsedSeconds != 30 {
		t.Fatalf("setup session = %+v", s)
	}
	return e
}

func newSubmitter(remoteSink, localSink submit.Sink) *submit.Submitter {
	return submit.New(remoteSink, localSink, submit.Options{
		Timeout: 2 * time.Second,
		Clock:   func() time.Time { return june1.Add(time.Hour) },
		Logger:  zap.NewNop(),
	})
}

func TestSubmitOutcomes(t *testing.T) {
	fail := errors.New("unavailable")
	tests := []struct {
		name        string
		remoteErr   error
		localErr    error
		want        submit.Outcome
		wantCleared bool
	}{
		{"both ok", nil, nil, submit.BothOK, true},
		{"remote only", nil, fail, submit.RemoteOnly, true},
		{"local only", fail, nil, submit.LocalOnly, true},
		{"both failed", fail, fail, submit.BothFailed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := storage.NewMemoryStore("wt", zap.NewNop())
			e := loggedOutEngine(t, repo)

			r := &fakeSink{name: "remote", err: tt.remoteErr}
			l := &fakeSink{name: "local", err: tt.localErr}
			res, err := newSubmitter(r, l).Submit(ctx, e, "Ada", "no blockers")
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if res.Outcome != tt.want {
				t.Errorf("Outcome = %s, want %s", res.Outcome, tt.want)
			}
			if r.calls.Load() != 1 || l.calls.Load() != 1 {
				t.Errorf("sink calls remote=%d local=%d, want 1 each", r.calls.Load(), l.calls.Load())
			}

			stored, err := repo.Load(ctx, "101", "2024-06-01")
			if err != nil {
				t.Fatal(err)
			}
			if tt.wantCleared {
				if stored != nil {
					t.Errorf("stored session = %+v, want nil after delivery", *stored)
				}
				return
			}
			if stored == nil {
				t.Fatal("stored session cleared although nothing was delivered")
			}
			if stored.State != model.StateStopped || stored.ElapsedSeconds != 30 {
				t.Errorf("stored session = %+v, want stopped with 30s", *stored)
			}
			if !e.Session().Ended() {
				t.Error("engine session reset although nothing was delivered")
			}
		})
	}
}

func TestSubmitWaitsForBothSinks(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryStore("wt", zap.NewNop())
	e := loggedOutEngine(t, repo)

	fast := &fakeSink{name: "remote"}
	slow := &fakeSink{name: "local", delay: 100 * time.Millisecond}
	res, err := newSubmitter(fast, slow).Submit(ctx, e, "Ada", "")
	if err != nil {
		t.Fatal(err)
	}
	if !slow.done.Load() {
		t.Error("Submit returned before the slow sink finished")
	}
	if res.Outcome != submit.BothOK {
		t.Errorf("Outcome = %s, want both_ok", res.Outcome)
	}
}

func TestSubmitSinkTimeout(t *testing.T) {
	ctx := context.Background()
	e := loggedOutEngine(t, storage.NewMemoryStore("wt", zap.NewNop()))

	hung := &fakeSink{name: "remote", delay: time.Minute}
	local := &fakeSink{name: "local"}
	s := submit.New(hung, local, submit.Options{Timeout: 50 * time.Millisecond, Logger: zap.NewNop()})

	res, err := s.Submit(ctx, e, "Ada", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != submit.LocalOnly {
		t.Errorf("Outcome = %s, want local_only", res.Outcome)
	}
	if !errors.Is(res.RemoteErr, context.DeadlineExceeded) {
		t.Errorf("RemoteErr = %v, want deadline exceeded", res.RemoteErr)
	}
}

func TestSubmitRecoversSinkPanic(t *testing.T) {
	e := loggedOutEngine(t, storage.NewMemoryStore("wt", zap.NewNop()))
	res, err := newSubmitter(&fakeSink{name: "remote", panicky: true}, &fakeSink{name: "local"}).
		Submit(context.Background(), e, "Ada", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != submit.LocalOnly || res.RemoteErr == nil {
		t.Errorf("result = %+v, want local_only with a remote error", res)
	}
}

func TestSubmitRequiresLoggedOutSession(t *testing.T) {
	ctx := context.Background()
	e := timer.New("101", storage.NewMemoryStore("wt", zap.NewNop()), timer.Options{Logger: zap.NewNop()})
	e.Start(ctx)

	r := &fakeSink{name: "remote"}
	_, err := newSubmitter(r, &fakeSink{name: "local"}).Submit(ctx, e, "Ada", "")
	if !errors.Is(err, submit.ErrSessionNotEnded) {
		t.Fatalf("err = %v, want ErrSessionNotEnded", err)
	}
	if r.calls.Load() != 0 {
		t.Error("sink called for a running session")
	}
}

func TestSubmitRetryAfterFailure(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryStore("wt", zap.NewNop())
	e := loggedOutEngine(t, repo)

	fail := errors.New("offline")
	res, _ := newSubmitter(&fakeSink{name: "remote", err: fail}, &fakeSink{name: "local", err: fail}).
		Submit(ctx, e, "Ada", "")
	if res.Outcome != submit.BothFailed {
		t.Fatalf("first attempt = %s", res.Outcome)
	}

	res, _ = newSubmitter(&fakeSink{name: "remote"}, &fakeSink{name: "local", err: fail}).
		Submit(ctx, e, "Ada", "")
	if res.Outcome != submit.RemoteOnly {
		t.Fatalf("retry = %s, want remote_only", res.Outcome)
	}
	if stored, _ := repo.Load(ctx, "101", "2024-06-01"); stored != nil {
		t.Errorf("session still stored after retry: %+v", *stored)
	}
}

func TestSubmitWithRemoteClient(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, err := remote.NewClient(context.Background(), &config.RemoteConfig{
		BaseURL: srv.URL,
		Timeout: time.Second,
	}, nil, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	repo := storage.NewMemoryStore("wt", zap.NewNop())
	e := loggedOutEngine(t, repo)
	dir := t.TempDir()
	s := newSubmitter(submit.NewRemoteSink(client), submit.NewFileSink(dir, nil))

	res, err := s.Submit(context.Background(), e, "Ada", "no blockers")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != submit.BothOK {
		t.Fatalf("Outcome = %s (remote %v, local %v)", res.Outcome, res.RemoteErr, res.LocalErr)
	}
	if hits.Load() != 1 {
		t.Errorf("backend hits = %d, want 1", hits.Load())
	}
	if stored, _ := repo.Load(context.Background(), "101", "2024-06-01"); stored != nil {
		t.Errorf("load after submit = %+v, want nil", *stored)
	}
}

func TestUnavailableSink(t *testing.T) {
	e := loggedOutEngine(t, storage.NewMemoryStore("wt", zap.NewNop()))
	res, err := newSubmitter(submit.NewUnavailableSink("remote", remote.ErrNoBaseURL), &fakeSink{name: "local"}).
		Submit(context.Background(), e, "Ada", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != submit.LocalOnly || !errors.Is(res.RemoteErr, remote.ErrNoBaseURL) {
		t.Errorf("result = %+v", res)
	}
}

func TestOutcomeMessages(t *testing.T) {
	seen := map[string]bool{}
	for _, o := range []submit.Outcome{submit.BothOK, submit.RemoteOnly, submit.LocalOnly, submit.BothFailed} {
		msg := o.Message()
		if msg == "" || seen[msg] {
			t.Errorf("%s: message %q empty or duplicated", o, msg)
		}
		seen[msg] = true
	}
	if submit.BothFailed.Delivered() || !submit.LocalOnly.Delivered() {
		t.Error("Delivered mismatch")
	}
}

func TestOutcomeJSON(t *testing.T) {
	for _, o := range []submit.Outcome{submit.BothFailed, submit.RemoteOnly, submit.LocalOnly, submit.BothOK} {
		data, err := json.Marshal(struct {
			Outcome submit.Outcome `json:"outcome"`
		}{o})
		if err != nil {
			t.Fatalf("Marshal(%v): %v", o, err)
		}
		var got struct {
			Outcome submit.Outcome `json:"outcome"`
		}
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if got.Outcome != o {
			t.Errorf("round trip of %v = %v", o, got.Outcome)
		}
	}

	var o submit.Outcome
	if err := o.UnmarshalText([]byte("partly")); err == nil {
		t.Error("UnmarshalText accepted an unknown outcome")
	}
}
