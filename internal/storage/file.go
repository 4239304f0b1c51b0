package storage

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

// FileStore keeps each session as a JSON file under
// <base>/sessions/<employee>/YYYY/MM/DD.json.
type FileStore struct {
	base   string
	logger *zap.Logger
}

// NewFileStore returns a FileStore rooted at base.
func NewFileStore(base string, logger *zap.Logger) *FileStore {
	return &FileStore{base: base, logger: logger}
}

// sessionFilePath returns the path for the given employee's day file.
func (s *FileStore) sessionFilePath(employeeID, date string) (string, error) {
	t, err := time.Parse(timecalc.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("storage error: invalid date %q: %w", date, err)
	}
	if employeeID == "" {
		return "", fmt.Errorf("storage error: empty employee id")
	}
	return filepath.Join(s.base, "sessions", url.PathEscape(employeeID),
		t.Format("2006"), t.Format("01"), t.Format("02")+".json"), nil
}

// Load reads the session file. A missing file yields nil; a corrupt file is
// backed up to *.corrupt and also yields nil.
func (s *FileStore) Load(_ context.Context, employeeID, date string) (*model.TimerSession, error) {
	path, err := s.sessionFilePath(employeeID, date)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	session := decodeSession(s.logger, path, data)
	if session == nil {
		backupPath := path + ".corrupt"
		if err := os.Rename(path, backupPath); err != nil {
			s.logger.Warn("could not back up corrupt timer state", zap.String("path", path), zap.Error(err))
		}
	}
	return session, nil
}

// Save atomically writes the session file.
func (s *FileStore) Save(_ context.Context, employeeID, date string, session model.TimerSession) error {
	path, err := s.sessionFilePath(employeeID, date)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// Clear removes the session file; a missing file is not an error.
func (s *FileStore) Clear(_ context.Context, employeeID, date string) error {
	path, err := s.sessionFilePath(employeeID, date)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage error removing %s: %w", path, err)
	}
	return nil
}

// ClearBefore walks the employee's session tree and removes day files dated
// before date.
func (s *FileStore) ClearBefore(_ context.Context, employeeID, date string) (int, error) {
	if employeeID == "" {
		return 0, fmt.Errorf("storage error: empty employee id")
	}
	root := filepath.Join(s.base, "sessions", url.PathEscape(employeeID))
	n := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(strings.TrimSuffix(rel, ".json")), "/")
		if len(parts) != 3 {
			return nil
		}
		day := strings.Join(parts, "-")
		if _, err := time.Parse(timecalc.DateLayout, day); err != nil || day >= date {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("storage error clearing old sessions: %w", err)
	}
	return n, nil
}

// writeFileAtomic writes to a temp file then renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
