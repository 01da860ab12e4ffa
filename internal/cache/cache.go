// Package cache implements the persistent idempotency cache that keeps
// repeated runs from reprocessing records already resolved remotely.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	applogger "github.com/tzhuang/anobii-goodreads-sync/internal/logger"
)

// Outcome flags stored per ISBN-13. Entries are created on first attempt and
// never deleted.
const (
	FlagSuccess = ""
	FlagError   = "e"
)

// Entry is one cached outcome, keyed by ISBN-13.
type Entry struct {
	ISBN13    string `gorm:"primaryKey;column:isbn13"`
	Flag      string `gorm:"column:flag"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the sqlite-backed idempotency cache.
type Store struct {
	db  *gorm.DB
	log *applogger.Logger
}

// Open opens (and if needed creates) the cache database at path.
func Open(path string, log *applogger.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// SQLite only supports one writer at a time; the pipeline is
	// single-threaded anyway.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache schema: %w", err)
	}

	if log != nil {
		log.Info().Str("path", path).Msg("Idempotency cache opened")
	}

	return &Store{db: db, log: log}, nil
}

// Contains reports whether isbn13 has a recorded outcome.
func (s *Store) Contains(isbn13 string) (bool, error) {
	var count int64
	if err := s.db.Model(&Entry{}).Where("isbn13 = ?", isbn13).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to query cache: %w", err)
	}
	return count > 0, nil
}

// Get returns the recorded flag for isbn13 and whether one exists.
func (s *Store) Get(isbn13 string) (string, bool, error) {
	var entry Entry
	err := s.db.First(&entry, "isbn13 = ?", isbn13).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to query cache: %w", err)
	}
	return entry.Flag, true, nil
}

// Set records the outcome flag for isbn13, overwriting any earlier flag.
func (s *Store) Set(isbn13, flag string) error {
	entry := Entry{ISBN13: isbn13, Flag: flag}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "isbn13"}},
		DoUpdates: clause.AssignmentColumns([]string{"flag", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
