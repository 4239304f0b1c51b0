package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/config"
)

// Open builds the Repository selected by cfg.Driver. The returned close
// function releases any connection and is never nil.
func Open(cfg *config.StorageConfig, logger *zap.Logger) (Repository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case "", "file":
		return NewFileStore(cfg.Dir, logger), noop, nil
	case "memory":
		return NewMemoryStore(cfg.KeyPrefix, logger), noop, nil
	case "redis":
		s, err := NewRedisStore(&cfg.Redis, cfg.KeyPrefix, logger)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case "postgres":
		s, err := NewPostgresStore(cfg.Postgres.DSN, cfg.KeyPrefix, logger)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
