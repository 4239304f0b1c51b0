package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/config"
	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/storage"
)

func ptrTime(t time.Time) *time.Time { return &t }
func ptrInt(v int64) *int64          { return &v }

func sampleSession() model.TimerSession {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return model.TimerSession{
		EmployeeID:      "101",
		Date:            "2024-06-01",
		State:           model.StatePaused,
		ElapsedSeconds:  1234,
		PausedAtElapsed: ptrInt(1234),
		WorkStartedAt:   ptrTime(start),
		LastTickAt:      ptrTime(start.Add(1234 * time.Second)),
	}
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func equalInt(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func assertSessionEqual(t *testing.T, got *model.TimerSession, want model.TimerSession) {
	t.Helper()
	if got == nil {
		t.Fatal("session = nil, want a session")
	}
	if got.EmployeeID != want.EmployeeID || got.Date != want.Date || got.State != want.State ||
		got.ElapsedSeconds != want.ElapsedSeconds {
		t.Errorf("session = %+v, want %+v", *got, want)
	}
	if !equalTime(got.StartedAt, want.StartedAt) || !equalTime(got.WorkStartedAt, want.WorkStartedAt) ||
		!equalTime(got.EndedAt, want.EndedAt) || !equalTime(got.LastTickAt, want.LastTickAt) {
		t.Errorf("session timestamps = %+v, want %+v", *got, want)
	}
	if !equalInt(got.PausedAtElapsed, want.PausedAtElapsed) {
		t.Errorf("PausedAtElapsed = %v, want %v", got.PausedAtElapsed, want.PausedAtElapsed)
	}
}

// runRepositoryContract exercises the behavior every Repository must share.
func runRepositoryContract(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	want := sampleSession()

	t.Run("load missing", func(t *testing.T) {
		got, err := repo.Load(ctx, "nobody", "2024-06-01")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got != nil {
			t.Errorf("Load on missing record = %+v, want nil", *got)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		if err := repo.Save(ctx, want.EmployeeID, want.Date, want); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := repo.Load(ctx, want.EmployeeID, want.Date)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		assertSessionEqual(t, got, want)
	})

	t.Run("overwrite", func(t *testing.T) {
		updated := want
		updated.State = model.StateRunning
		updated.ElapsedSeconds = 2000
		updated.PausedAtElapsed = nil
		updated.StartedAt = ptrTime(time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC))
		if err := repo.Save(ctx, want.EmployeeID, want.Date, updated); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := repo.Load(ctx, want.EmployeeID, want.Date)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		assertSessionEqual(t, got, updated)
	})

	t.Run("keys are per employee and date", func(t *testing.T) {
		if got, _ := repo.Load(ctx, want.EmployeeID, "2024-06-02"); got != nil {
			t.Errorf("Load other date = %+v, want nil", *got)
		}
		if got, _ := repo.Load(ctx, "102", want.Date); got != nil {
			t.Errorf("Load other employee = %+v, want nil", *got)
		}
	})

	t.Run("clear", func(t *testing.T) {
		if err := repo.Clear(ctx, want.EmployeeID, want.Date); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		got, err := repo.Load(ctx, want.EmployeeID, want.Date)
		if err != nil {
			t.Fatalf("Load after clear: %v", err)
		}
		if got != nil {
			t.Errorf("Load after clear = %+v, want nil", *got)
		}
		if err := repo.Clear(ctx, want.EmployeeID, want.Date); err != nil {
			t.Errorf("second Clear: %v", err)
		}
	})

	t.Run("clear before", func(t *testing.T) {
		seed := []struct{ employee, date string }{
			{"101", "2024-05-30"},
			{"101", "2024-05-31"},
			{"101", "2024-06-01"},
			{"102", "2024-05-30"},
		}
		for _, s := range seed {
			sess := want
			sess.EmployeeID, sess.Date = s.employee, s.date
			if err := repo.Save(ctx, s.employee, s.date, sess); err != nil {
				t.Fatalf("Save %v: %v", s, err)
			}
		}

		n, err := repo.ClearBefore(ctx, "101", "2024-06-01")
		if err != nil {
			t.Fatalf("ClearBefore: %v", err)
		}
		if n != 2 {
			t.Errorf("ClearBefore removed %d records, want 2", n)
		}
		for _, s := range seed {
			got, err := repo.Load(ctx, s.employee, s.date)
			if err != nil {
				t.Fatalf("Load %v: %v", s, err)
			}
			kept := s.employee == "102" || s.date == "2024-06-01"
			if (got != nil) != kept {
				t.Errorf("record %v present = %v, want %v", s, got != nil, kept)
			}
		}
		if n, err := repo.ClearBefore(ctx, "nobody", "2024-06-01"); err != nil || n != 0 {
			t.Errorf("ClearBefore unknown employee = %d, %v, want 0, nil", n, err)
		}
	})
}

func TestFileStore(t *testing.T) {
	runRepositoryContract(t, storage.NewFileStore(t.TempDir(), zap.NewNop()))
}

func TestMemoryStore(t *testing.T) {
	runRepositoryContract(t, storage.NewMemoryStore("test", zap.NewNop()))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("WT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WT_TEST_REDIS_ADDR not set")
	}
	prefix := "wt-test-" + time.Now().Format("150405.000000")
	s, err := storage.NewRedisStore(&config.RedisConfig{Addr: addr}, prefix, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer s.Close()
	runRepositoryContract(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("WT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("WT_TEST_POSTGRES_DSN not set")
	}
	prefix := "wt-test-" + time.Now().Format("150405.000000")
	s, err := storage.NewPostgresStore(dsn, prefix, zap.NewNop())
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	defer s.Close()
	runRepositoryContract(t, s)
}

func TestFileStoreLayout(t *testing.T) {
	base := t.TempDir()
	s := storage.NewFileStore(base, zap.NewNop())
	session := sampleSession()

	if err := s.Save(context.Background(), "emp/7", "2024-06-01", session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	path := filepath.Join(base, "sessions", "emp%2F7", "2024", "06", "01.json")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected session file at %s: %v", path, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}
}

func TestFileStoreRejectsBadDate(t *testing.T) {
	s := storage.NewFileStore(t.TempDir(), zap.NewNop())
	if err := s.Save(context.Background(), "101", "01/06/2024", sampleSession()); err == nil {
		t.Error("expected error for non YYYY-MM-DD date")
	}
}

func TestFileStoreCorruptIsBackedUp(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "sessions", "101", "2024", "06")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "01.json")
	if err := os.WriteFile(path, []byte("{bad json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := storage.NewFileStore(base, zap.NewNop())
	got, err := s.Load(context.Background(), "101", "2024-06-01")
	if err != nil {
		t.Fatalf("Load on corrupt file returned error: %v", err)
	}
	if got != nil {
		t.Errorf("Load on corrupt file = %+v, want nil", *got)
	}
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Errorf("expected backup file to exist after corrupt JSON: %v", err)
	}
}

func TestMemoryStoreCorruptAndInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{bad json"},
		{"unknown state", `{"employee_id":"101","date":"2024-06-01","state":"sleeping"}`},
		{"negative elapsed", `{"employee_id":"101","date":"2024-06-01","state":"paused","elapsed_seconds":-4}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storage.NewMemoryStore("wt", zap.NewNop())
			s.Put(storage.Key("wt", "101", "2024-06-01"), []byte(tt.raw))
			got, err := s.Load(context.Background(), "101", "2024-06-01")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got != nil {
				t.Errorf("Load = %+v, want nil", *got)
			}
		})
	}
}

func TestKey(t *testing.T) {
	if got := storage.Key("ems", "101", "2024-06-01"); got != "ems:101:2024-06-01" {
		t.Errorf("Key = %q", got)
	}
	if got := storage.Key("", "101", "2024-06-01"); got != "worktimer:101:2024-06-01" {
		t.Errorf("Key with empty prefix = %q", got)
	}
}

func TestOpen(t *testing.T) {
	for _, driver := range []string{"file", "memory"} {
		repo, closeFn, err := storage.Open(&config.StorageConfig{Driver: driver, Dir: t.TempDir()}, zap.NewNop())
		if err != nil {
			t.Fatalf("Open(%s): %v", driver, err)
		}
		if repo == nil {
			t.Fatalf("Open(%s) returned nil repository", driver)
		}
		if err := closeFn(); err != nil {
			t.Errorf("close(%s): %v", driver, err)
		}
	}
	if _, _, err := storage.Open(&config.StorageConfig{Driver: "floppy"}, zap.NewNop()); err == nil {
		t.Error("expected error for unknown driver")
	}
}
