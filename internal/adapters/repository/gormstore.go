package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/vigil/internal/domain/model"
)

// GormStore implements Store on a gorm-managed SQLite database.
type GormStore struct {
	db *gorm.DB
}

// compile-time interface check.
var _ Store = (*GormStore)(nil)

// Open connects to the database at dsn, migrates the schema, and returns a
// ready store. Use ":memory:" for an ephemeral database in tests.
func Open(dsn string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", dsn, err)
	}

	// No unique index over the event-log natural keys: uniqueness is the
	// merger's existence-check contract, not a schema constraint.
	if err := db.AutoMigrate(
		&model.Security{},
		&model.AttentionEvent{},
		&model.DispositionInterval{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &GormStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap database handle: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// EnsureSecurity creates the security if absent. The creation is committed
// immediately so later records in the same pass see it as existing.
func (s *GormStore) EnsureSecurity(ctx context.Context, code, name string) (bool, error) {
	if code == "" {
		return false, ErrEmptyCode
	}
	if name == "" {
		name = code
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.Security{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("look up security %s: %w", code, err)
	}
	if count > 0 {
		return false, nil
	}

	if err := s.db.WithContext(ctx).
		Create(&model.Security{Code: code, Name: name}).Error; err != nil {
		return false, fmt.Errorf("create security %s: %w", code, err)
	}
	return true, nil
}

// SecurityName returns the registered name for code.
func (s *GormStore) SecurityName(ctx context.Context, code string) (string, error) {
	var sec model.Security
	err := s.db.WithContext(ctx).First(&sec, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("look up security %s: %w", code, err)
	}
	return sec.Name, nil
}

// HasAttention reports whether an event exists for (code, date).
func (s *GormStore) HasAttention(ctx context.Context, code string, date time.Time) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.AttentionEvent{}).
		Where("code = ? AND date = ?", code, date).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("look up attention (%s, %s): %w", code, date.Format(time.DateOnly), err)
	}
	return count > 0, nil
}

// InsertAttention writes the batch in a single transaction.
func (s *GormStore) InsertAttention(ctx context.Context, events []model.AttentionEvent) error {
	if len(events) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&events).Error
	})
	if err != nil {
		return fmt.Errorf("insert %d attention events: %w", len(events), err)
	}
	return nil
}

// HasDisposition reports whether an interval exists for (code, start).
func (s *GormStore) HasDisposition(ctx context.Context, code string, start time.Time) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.DispositionInterval{}).
		Where("code = ? AND start_date = ?", code, start).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("look up disposition (%s, %s): %w", code, start.Format(time.DateOnly), err)
	}
	return count > 0, nil
}

// InsertDispositions writes the batch in a single transaction.
func (s *GormStore) InsertDispositions(ctx context.Context, intervals []model.DispositionInterval) error {
	if len(intervals) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&intervals).Error
	})
	if err != nil {
		return fmt.Errorf("insert %d disposition intervals: %w", len(intervals), err)
	}
	return nil
}

// AttentionOn returns all events flagged exactly on date.
func (s *GormStore) AttentionOn(ctx context.Context, date time.Time) ([]model.AttentionEvent, error) {
	var events []model.AttentionEvent
	if err := s.db.WithContext(ctx).
		Where("date = ?", date).
		Order("code ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("query attention on %s: %w", date.Format(time.DateOnly), err)
	}
	return events, nil
}

// DispositionsCovering returns intervals containing date.
func (s *GormStore) DispositionsCovering(ctx context.Context, date time.Time) ([]model.DispositionInterval, error) {
	var intervals []model.DispositionInterval
	if err := s.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", date, date).
		Order("code ASC").
		Find(&intervals).Error; err != nil {
		return nil, fmt.Errorf("query dispositions covering %s: %w", date.Format(time.DateOnly), err)
	}
	return intervals, nil
}

// RecentAttention returns up to limit events for code with date <= ref,
// newest first.
func (s *GormStore) RecentAttention(ctx context.Context, code string, ref time.Time, limit int) ([]model.AttentionEvent, error) {
	var events []model.AttentionEvent
	if err := s.db.WithContext(ctx).
		Where("code = ? AND date <= ?", code, ref).
		Order("date DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("query recent attention for %s: %w", code, err)
	}
	return events, nil
}

// ActiveCodes returns distinct codes flagged on or after since.
func (s *GormStore) ActiveCodes(ctx context.Context, since time.Time) ([]string, error) {
	var codes []string
	if err := s.db.WithContext(ctx).
		Model(&model.AttentionEvent{}).
		Where("date >= ?", since).
		Distinct("code").
		Order("code ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, fmt.Errorf("query active codes since %s: %w", since.Format(time.DateOnly), err)
	}
	return codes, nil
}

// Counts returns current table sizes.
func (s *GormStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	db := s.db.WithContext(ctx)
	if err := db.Model(&model.Security{}).Count(&c.Securities).Error; err != nil {
		return Counts{}, fmt.Errorf("count securities: %w", err)
	}
	if err := db.Model(&model.AttentionEvent{}).Count(&c.AttentionEvents).Error; err != nil {
		return Counts{}, fmt.Errorf("count attention events: %w", err)
	}
	if err := db.Model(&model.DispositionInterval{}).Count(&c.DispositionIntervals).Error; err != nil {
		return Counts{}, fmt.Errorf("count disposition intervals: %w", err)
	}
	return c, nil
}
