// Package journal persists compilation lifecycle events to SQLite so past
// runs can be inspected after the fact. The journal is an optional bus tap;
// nothing in the compilation path depends on it succeeding.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one journaled lifecycle event.
type Entry struct {
	ID        int64
	RunID     string
	EventType string
	Timestamp time.Time
	Payload   []byte
}

// SQLiteJournal stores events in a SQLite database. Use ":memory:" for an
// in-memory database, or a file path for persistent storage.
type SQLiteJournal struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or opens a journal database and ensures the schema exists.
func Open(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	j := &SQLiteJournal{db: db}
	if err := j.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return j, nil
}

func (j *SQLiteJournal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_run_id ON events(run_id);
	CREATE INDEX IF NOT EXISTS idx_event_type ON events(event_type);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Append adds a new event to the journal.
func (j *SQLiteJournal) Append(ctx context.Context, runID, eventType string, payload []byte) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx,
		"INSERT INTO events (run_id, event_type, timestamp, payload) VALUES (?, ?, ?, ?)",
		runID, eventType, time.Now().UnixNano(), payload,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// EventsForRun returns all journaled events for a run in append order.
func (j *SQLiteJournal) EventsForRun(ctx context.Context, runID string) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx,
		"SELECT id, run_id, event_type, timestamp, payload FROM events WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.ID, &e.RunID, &e.EventType, &ts, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp = time.Unix(0, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RunIDs returns the distinct run IDs in the journal, oldest first.
func (j *SQLiteJournal) RunIDs(ctx context.Context) ([]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx,
		"SELECT run_id FROM events GROUP BY run_id ORDER BY MIN(id)")
	if err != nil {
		return nil, fmt.Errorf("query run ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close releases the underlying database handle.
func (j *SQLiteJournal) Close() error { return j.db.Close() }
