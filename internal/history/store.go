// Package history persists per-file outcomes to a local SQLite database so
// past runs can be inspected. The database lives under the user config
// directory, never inside the screenshot directory.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one processed file's outcome.
type Record struct {
	ID          int64
	Dir         string
	OldName     string
	NewName     string
	Category    string
	Subcategory string
	Outcome     string // renamed, degraded, failed or skipped
	Reason      string
	CreatedAt   time.Time
}

// Store is a SQLite-backed history of rename outcomes.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	// WAL mode and a busy timeout so a watch process and a one-shot run can
	// coexist.
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS renames (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dir TEXT NOT NULL,
		old_name TEXT NOT NULL,
		new_name TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		subcategory TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_renames_created_at ON renames(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return nil
}

// Add appends a record. CreatedAt defaults to now when zero.
func (s *Store) Add(r Record) error {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO renames (dir, old_name, new_name, category, subcategory, outcome, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Dir, r.OldName, r.NewName, r.Category, r.Subcategory, r.Outcome, r.Reason, createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, dir, old_name, new_name, category, subcategory, outcome, reason, created_at
		 FROM renames ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.Dir, &r.OldName, &r.NewName, &r.Category, &r.Subcategory, &r.Outcome, &r.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
