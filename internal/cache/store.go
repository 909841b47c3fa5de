package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/username/flextime/pkg/dateutil"
)

// Store keeps the first tracked date per user between runs
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// Open opens (or creates) the cache database at dbPath and runs migrations
func Open(dbPath string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure cache database: %w", err)
	}

	logger.Debug("Cache opened", zap.String("path", dbPath))

	return &Store{db: db, path: dbPath, logger: logger, now: time.Now}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// FirstDate returns the cached first tracked date for a user
func (s *Store) FirstDate(ctx context.Context, userKey string) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT first_date FROM first_entry_dates WHERE user_key = ?", userKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read first date: %w", err)
	}

	date, err := dateutil.ParseDate(raw)
	if err != nil {
		s.logger.Warn("Ignoring corrupt cache entry",
			zap.String("user", userKey),
			zap.String("value", raw))
		return time.Time{}, false, nil
	}

	return date, true, nil
}

// SetFirstDate stores the first tracked date for a user
func (s *Store) SetFirstDate(ctx context.Context, userKey string, date time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO first_entry_dates (user_key, first_date, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_key) DO UPDATE SET
			first_date = excluded.first_date,
			updated_at = excluded.updated_at`,
		userKey, dateutil.FormatDate(date), s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save first date: %w", err)
	}

	s.logger.Info("First date cached",
		zap.String("user", userKey),
		zap.String("date", dateutil.FormatDate(date)))

	return nil
}

// Clear removes every cached entry and returns how many were removed
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM first_entry_dates")
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	return n, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}
