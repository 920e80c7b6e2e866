// Package history keeps an optional SQLite log of completed scout runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/scout/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Store manages the SQLite run history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the database at dbPath and applies
// pending migrations. ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return store, nil
}

// execWithRetry executes a statement, backing off exponentially while the
// database reports it is locked by another process.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores one run summary. An empty ID is filled with a new UUID.
func (s *Store) RecordRun(ctx context.Context, run *models.RunSummary) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	query := `INSERT INTO runs
		(id, operation, root, query, format, results, visited, excluded, unreadable, truncated, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Operation,
		run.Root,
		run.Query,
		string(run.Format),
		run.Results,
		run.Visited,
		run.Excluded,
		run.Unreadable,
		run.Truncated,
		run.StartedAt.UnixNano(),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	return s.queryRuns(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
}

// RunsForRoot returns up to limit runs against root, newest first.
func (s *Store) RunsForRoot(ctx context.Context, root string, limit int) ([]models.RunSummary, error) {
	return s.queryRuns(ctx, `SELECT `+runColumns+` FROM runs WHERE root = ? ORDER BY started_at DESC LIMIT ?`, root, limit)
}

// DeleteOlderThan removes runs that started before cutoff and returns the
// number of rows deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("delete old runs: %w", err)
	}
	return result.RowsAffected()
}

const runColumns = `id, operation, root, query, format, results, visited, excluded, unreadable, truncated, started_at, duration_ms`

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]models.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RunSummary
	for rows.Next() {
		var (
			run        models.RunSummary
			format     string
			startedAt  int64
			durationMs int64
		)
		if err := rows.Scan(
			&run.ID,
			&run.Operation,
			&run.Root,
			&run.Query,
			&format,
			&run.Results,
			&run.Visited,
			&run.Excluded,
			&run.Unreadable,
			&run.Truncated,
			&startedAt,
			&durationMs,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Format = models.OutputFormat(format)
		run.StartedAt = time.Unix(0, startedAt)
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
