package server

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/storage"
	"github.com/Tiliavir/worktimer/internal/timer"
)

var errManagerClosed = errors.New("engine manager closed")

// EngineManager owns one timer engine per employee. Engines are restored from
// the repository on first use and ticked by their own Run loop until Close.
type EngineManager struct {
	repo   storage.Repository
	opts   timer.Options
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	engines map[string]*timer.Engine
	closed  bool
}

func NewEngineManager(repo storage.Repository, opts timer.Options, logger *zap.Logger) *EngineManager {
	ctx, cancel := context.WithCancel(context.Background())
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &EngineManager{
		repo:    repo,
		opts:    opts,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		engines: make(map[string]*timer.Engine),
	}
}

// Get returns the running engine for employeeID, creating it on first use.
func (m *EngineManager) Get(ctx context.Context, employeeID string) (*timer.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errManagerClosed
	}
	if e, ok := m.engines[employeeID]; ok {
		return e, nil
	}

	e := timer.New(employeeID, m.repo, m.opts)
	if err := e.Restore(ctx); err != nil {
		m.logger.Warn("restore failed, starting fresh",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	}
	m.engines[employeeID] = e

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		e.Run(m.ctx)
	}()
	m.logger.Debug("engine started", zap.String("employee_id", employeeID))
	return e, nil
}

// Close stops every Run loop, which flushes pending state, and waits.
func (m *EngineManager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	for _, e := range m.engines {
		e.Close()
	}
	m.mu.Unlock()
}
