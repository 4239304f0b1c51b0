package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/config"
	"github.com/Tiliavir/worktimer/internal/model"
)

// RedisStore keeps sessions as JSON strings under namespaced keys.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore connects to redis and checks the connection with PING.
func NewRedisStore(cfg *config.RedisConfig, prefix string, logger *zap.Logger) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Debug("redis connected", zap.String("addr", cfg.Addr))

	return &RedisStore{rdb: rdb, prefix: prefix, ttl: cfg.TTL, logger: logger}, nil
}

func (s *RedisStore) Load(ctx context.Context, employeeID, date string) (*model.TimerSession, error) {
	key := Key(s.prefix, employeeID, date)
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", key, err)
	}
	return decodeSession(s.logger, key, data), nil
}

func (s *RedisStore) Save(ctx context.Context, employeeID, date string, session model.TimerSession) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	key := Key(s.prefix, employeeID, date)
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("storage error writing %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, employeeID, date string) error {
	key := Key(s.prefix, employeeID, date)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("storage error deleting %s: %w", key, err)
	}
	return nil
}

// ClearBefore scans the employee's keys and deletes those dated before date.
func (s *RedisStore) ClearBefore(ctx context.Context, employeeID, date string) (int, error) {
	pattern := globEscaper.Replace(Key(s.prefix, employeeID, "")) + "*"
	var stale []string
	iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if d, ok := dateOfKey(s.prefix, employeeID, iter.Val()); ok && d < date {
			stale = append(stale, iter.Val())
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("storage error scanning %s: %w", pattern, err)
	}
	if len(stale) == 0 {
		return 0, nil
	}
	n, err := s.rdb.Del(ctx, stale...).Result()
	if err != nil {
		return 0, fmt.Errorf("storage error deleting old sessions: %w", err)
	}
	return int(n), nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
