package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Tiliavir/worktimer/internal/model"
)

// sessionRecord is the timer_sessions row; Payload holds the session JSON.
type sessionRecord struct {
	Key        string `gorm:"primaryKey;size:255"`
	EmployeeID string `gorm:"size:64;index"`
	Date       string `gorm:"size:10;index"`
	Payload    string `gorm:"type:text;not null"`
	UpdatedAt  time.Time
}

func (sessionRecord) TableName() string { return "timer_sessions" }

// PostgresStore keeps sessions in the timer_sessions table.
type PostgresStore struct {
	db     *gorm.DB
	prefix string
	logger *zap.Logger
}

// NewPostgresStore opens the database and migrates timer_sessions.
func NewPostgresStore(dsn, prefix string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return newPostgresStore(db, prefix, logger)
}

func newPostgresStore(db *gorm.DB, prefix string, logger *zap.Logger) (*PostgresStore, error) {
	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, fmt.Errorf("migrating timer_sessions: %w", err)
	}
	return &PostgresStore{db: db, prefix: prefix, logger: logger}, nil
}

func (s *PostgresStore) Load(ctx context.Context, employeeID, date string) (*model.TimerSession, error) {
	key := Key(s.prefix, employeeID, date)
	var rec sessionRecord
	err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", key, err)
	}
	return decodeSession(s.logger, key, []byte(rec.Payload)), nil
}

func (s *PostgresStore) Save(ctx context.Context, employeeID, date string, session model.TimerSession) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	rec := sessionRecord{
		Key:        Key(s.prefix, employeeID, date),
		EmployeeID: employeeID,
		Date:       date,
		Payload:    string(data),
	}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("storage error writing %s: %w", rec.Key, err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, employeeID, date string) error {
	key := Key(s.prefix, employeeID, date)
	if err := s.db.WithContext(ctx).Delete(&sessionRecord{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("storage error deleting %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) ClearBefore(ctx context.Context, employeeID, date string) (int, error) {
	head := likeEscaper.Replace(Key(s.prefix, employeeID, "")) + "%"
	res := s.db.WithContext(ctx).
		Where("employee_id = ? AND date < ? AND key LIKE ?", employeeID, date, head).
		Delete(&sessionRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("storage error deleting old sessions: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
