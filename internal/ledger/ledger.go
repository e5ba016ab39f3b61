// Package ledger records model invocation outcomes in a local SQLite
// database for operability. It never holds conversation state; the context
// window lives in memory only.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger is an append-only log of model invocations.
type Ledger struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database at the given path, ensuring
// that the parent directory exists, and initializes the schema.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping ledger at %s: %w", path, err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS invocations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL DEFAULT (unixepoch()),
			channel_id TEXT NOT NULL,
			outcome TEXT NOT NULL,
			latency_ms INTEGER NOT NULL,
			prompt_chars INTEGER NOT NULL,
			reply_chars INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_invocations_channel ON invocations(channel_id, id);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init ledger schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// RecordInvocation appends one row describing a model call.
func (l *Ledger) RecordInvocation(channelID, outcome string, latency time.Duration, promptChars, replyChars int) error {
	_, err := l.db.Exec(
		`INSERT INTO invocations (channel_id, outcome, latency_ms, prompt_chars, reply_chars) VALUES (?, ?, ?, ?, ?)`,
		channelID, outcome, latency.Milliseconds(), promptChars, replyChars,
	)
	if err != nil {
		return fmt.Errorf("failed to record invocation: %w", err)
	}
	return nil
}

// RecentOutcomes returns the outcome labels of the channel's most recent
// invocations, newest first.
func (l *Ledger) RecentOutcomes(channelID string, limit int) ([]string, error) {
	rows, err := l.db.Query(
		`SELECT outcome FROM invocations WHERE channel_id = ? ORDER BY id DESC LIMIT ?`,
		channelID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	defer rows.Close()

	var outcomes []string
	for rows.Next() {
		var outcome string
		if err := rows.Scan(&outcome); err != nil {
			return nil, fmt.Errorf("failed to scan invocation row: %w", err)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, rows.Err()
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
