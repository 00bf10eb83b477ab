// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps SQLite access for materials and progression data.
type Store struct {
	db *sql.DB
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	// One connection serializes read-modify-write cycles of practice submissions.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS materials (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			audio_path TEXT NOT NULL,
			duration_seconds REAL NOT NULL,
			created_by TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sentences (
			id TEXT PRIMARY KEY,
			material_id TEXT NOT NULL REFERENCES materials(id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			start_time REAL NOT NULL,
			end_time REAL NOT NULL,
			sequence_order INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id TEXT PRIMARY KEY,
			current_streak INTEGER NOT NULL,
			longest_streak INTEGER NOT NULL,
			last_practice_date TEXT,
			total_xp INTEGER NOT NULL,
			total_practices INTEGER NOT NULL,
			total_time_seconds INTEGER NOT NULL,
			average_score REAL NOT NULL,
			level INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS daily_goals (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			target_count INTEGER NOT NULL,
			completed_count INTEGER NOT NULL,
			goal_date TEXT NOT NULL,
			UNIQUE (user_id, goal_date)
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			achievement_type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			icon TEXT NOT NULL,
			unlocked_at TEXT NOT NULL,
			UNIQUE (user_id, achievement_type)
		);`,
		`CREATE TABLE IF NOT EXISTS practice_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			material_id TEXT NOT NULL,
			score REAL NOT NULL,
			duration_seconds INTEGER NOT NULL,
			xp_gained INTEGER NOT NULL,
			user_transcript TEXT NOT NULL,
			ai_feedback TEXT NOT NULL,
			missed_words TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sentences_material ON sentences(material_id, sequence_order);`,
		`CREATE INDEX IF NOT EXISTS idx_materials_created ON materials(created_by, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_practice_logs_user ON practice_logs(user_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_practice_logs_material ON practice_logs(material_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		// Best-effort rollback.
		_ = err
	}
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		// Best-effort rows close.
		_ = err
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
