package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/worktimer/internal/model"
)

const appName = "worktimer"

// FileSink writes each entry to its own JSON file in a directory.
type FileSink struct {
	dir   string
	clock func() time.Time
}

func NewFileSink(dir string, clock func() time.Time) *FileSink {
	if clock == nil {
		clock = time.Now
	}
	return &FileSink{dir: dir, clock: clock}
}

func (s *FileSink) Name() string { return "local" }

// WorkLogFile is the document written by FileSink.
type WorkLogFile struct {
	Entry model.WorkLogEntry `json:"entry"`
	Meta  WorkLogMeta        `json:"meta"`
}

type WorkLogMeta struct {
	GeneratedAt    time.Time   `json:"generatedAt"`
	App            string      `json:"app"`
	State          model.State `json:"state"`
	ElapsedSeconds int64       `json:"elapsedSeconds"`
}

// FileName returns worklog-<employee>-<date>-<HHMMSS>.json.
func FileName(employeeID, date string, at time.Time) string {
	return fmt.Sprintf("worklog-%s-%s-%s.json", url.PathEscape(employeeID), date, at.Format("150405"))
}

func (s *FileSink) Deliver(_ context.Context, entry model.WorkLogEntry, session model.TimerSession) error {
	now := s.clock()
	doc := WorkLogFile{
		Entry: entry,
		Meta: WorkLogMeta{
			GeneratedAt:    now,
			App:            appName,
			State:          session.State,
			ElapsedSeconds: session.ElapsedSeconds,
		},
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling work log: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(s.dir, FileName(entry.EmployeeID, entry.Date, now))
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing work log: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving work log: %w", err)
	}
	return nil
}

// Artifact is a work log file found on disk.
type Artifact struct {
	Path string
	WorkLogFile
}

// List reads the work log files in dir, oldest first by name. Files that do
// not parse are returned in skipped.
func List(dir string) (artifacts []Artifact, skipped []string, err error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading export directory: %w", err)
	}

	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, "worklog-") || filepath.Ext(name) != ".json" {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			skipped = append(skipped, path)
			continue
		}
		var doc WorkLogFile
		if err := json.Unmarshal(data, &doc); err != nil {
			skipped = append(skipped, path)
			continue
		}
		artifacts = append(artifacts, Artifact{Path: path, WorkLogFile: doc})
	}
	sort.Slice(artifacts, func(i, j int) bool {
		a, b := artifacts[i].Entry, artifacts[j].Entry
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return artifacts[i].Meta.GeneratedAt.Before(artifacts[j].Meta.GeneratedAt)
	})
	return artifacts, skipped, nil
}
