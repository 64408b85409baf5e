package eventstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) a journal database. Use ":memory:" for an
// in-memory journal, or a file path for one that survives the process.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize journal schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hook_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		hook TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_hook_events_build ON hook_events(build_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records a hook firing.
func (s *SQLiteStore) Append(ctx context.Context, buildID, hook string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hook_events (build_id, hook, timestamp) VALUES (?, ?, ?)`,
		buildID, hook, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("append hook event: %w", err)
	}
	return nil
}

// ByBuild returns the events for a build in insertion order.
func (s *SQLiteStore) ByBuild(ctx context.Context, buildID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, build_id, hook, timestamp FROM hook_events WHERE build_id = ? ORDER BY id`,
		buildID)
	if err != nil {
		return nil, fmt.Errorf("query hook events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var e Event
		var ts int64
		if err := rows.Scan(&e.ID, &e.BuildID, &e.Hook, &ts); err != nil {
			return nil, fmt.Errorf("scan hook event: %w", err)
		}
		e.Timestamp = time.Unix(0, ts)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
