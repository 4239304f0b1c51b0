package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/model"
)

// DefaultKeyPrefix namespaces session keys in shared key-value stores.
const DefaultKeyPrefix = "worktimer"

// Repository persists one TimerSession per (employee, date).
// Writes overwrite the whole record and the last write wins.
type Repository interface {
	// Load returns nil when no record exists or the stored record is unreadable.
	Load(ctx context.Context, employeeID, date string) (*model.TimerSession, error)
	Save(ctx context.Context, employeeID, date string, session model.TimerSession) error
	Clear(ctx context.Context, employeeID, date string) error
	// ClearBefore removes the employee's records dated before date and
	// returns how many were removed.
	ClearBefore(ctx context.Context, employeeID, date string) (int, error)
}

// BaseDir returns the root data directory (~/.worktimer).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".worktimer"), nil
}

// Key builds the namespaced record key for an employee's day.
func Key(prefix, employeeID, date string) string {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return prefix + ":" + employeeID + ":" + date
}

// dateOfKey returns the date part of key when key belongs to employeeID
// under prefix.
func dateOfKey(prefix, employeeID, key string) (string, bool) {
	head := Key(prefix, employeeID, "")
	if !strings.HasPrefix(key, head) {
		return "", false
	}
	date := key[len(head):]
	if strings.Contains(date, ":") {
		return "", false
	}
	return date, true
}

func encodeSession(session model.TimerSession) ([]byte, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("storage error marshalling session: %w", err)
	}
	return data, nil
}

// decodeSession returns nil for data that does not hold a usable session.
func decodeSession(logger *zap.Logger, key string, data []byte) *model.TimerSession {
	var session model.TimerSession
	if err := json.Unmarshal(data, &session); err != nil {
		logger.Warn("discarding unreadable timer state", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !session.State.Valid() || session.ElapsedSeconds < 0 {
		logger.Warn("discarding invalid timer state",
			zap.String("key", key),
			zap.String("state", string(session.State)),
			zap.Int64("elapsed_seconds", session.ElapsedSeconds),
		)
		return nil
	}
	return &session
}
