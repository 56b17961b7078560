package progress

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// fixed width so completed_at sorts lexically
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore keeps one row per completion, including plan and session ids
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
}

// OpenSQLiteStore opens or creates the database and applies migrations
func OpenSQLiteStore(path string, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		panic("SQLiteStore: logger cannot be nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating progress db: %w", err)
	}
	logger.Printf("SQLiteStore: opened %s", path)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS completions (
			id INTEGER PRIMARY KEY,
			exercise_id TEXT NOT NULL,
			plan_id TEXT NOT NULL DEFAULT '',
			session_id TEXT NOT NULL DEFAULT '',
			completed_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_exercise ON completions(exercise_id);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_completed_at ON completions(completed_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) RecordCompletion(ctx context.Context, rec CompletionRecord) error {
	if err := rec.validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO completions (exercise_id, plan_id, session_id, completed_at) VALUES (?, ?, ?, ?)`,
		rec.ExerciseID, rec.PlanID, rec.SessionID, rec.CompletedAt.UTC().Format(sqliteTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting completion: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Completions(ctx context.Context) (Completions, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT exercise_id, completed_at FROM completions ORDER BY completed_at, id`)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Best-effort rows close.
		_ = rows.Close()
	}()

	out := make(Completions)
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		ts, err := time.Parse(sqliteTimeFormat, at)
		if err != nil {
			return nil, fmt.Errorf("completion %s: bad timestamp %q: %w", id, at, err)
		}
		out[id] = append(out[id], ts)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
