package storage

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/model"
)

// MemoryStore keeps serialized sessions in a map. It backs tests and the
// "memory" driver.
type MemoryStore struct {
	mu     sync.Mutex
	prefix string
	data   map[string][]byte
	logger *zap.Logger
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(prefix string, logger *zap.Logger) *MemoryStore {
	return &MemoryStore{prefix: prefix, data: make(map[string][]byte), logger: logger}
}

func (s *MemoryStore) Load(_ context.Context, employeeID, date string) (*model.TimerSession, error) {
	key := Key(s.prefix, employeeID, date)
	s.mu.Lock()
	data, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return decodeSession(s.logger, key, data), nil
}

func (s *MemoryStore) Save(_ context.Context, employeeID, date string, session model.TimerSession) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[Key(s.prefix, employeeID, date)] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, employeeID, date string) error {
	s.mu.Lock()
	delete(s.data, Key(s.prefix, employeeID, date))
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ClearBefore(_ context.Context, employeeID, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.data {
		if d, ok := dateOfKey(s.prefix, employeeID, key); ok && d < date {
			delete(s.data, key)
			n++
		}
	}
	return n, nil
}

// Put stores raw bytes under key.
func (s *MemoryStore) Put(key string, raw []byte) {
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
