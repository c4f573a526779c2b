// Package history records editing sessions in SQLite: every generated
// config, test verdict, and master promotion gets a row.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Run actions.
const (
	ActionTest    = "test"
	ActionAdd     = "add"
	ActionRemove  = "remove"
	ActionPages   = "pages"
	ActionPromote = "promote"
)

// Run is one recorded operation.
type Run struct {
	ID         int64
	Action     string
	Module     string
	Page       int
	Detail     string
	ConfigPath string
	Approved   bool
	Promoted   bool
	CreatedAt  time.Time
}

// Store persists runs to SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at the given path.
func Open(dbPath string) (*Store, error) {
	// Set pragmas via DSN so EVERY connection in the pool gets them.
	// database/sql pools connections; a PRAGMA run via db.Exec only
	// applies to one connection, leaving others without busy_timeout.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite supports only one writer at a time. Limit the pool so callers
	// queue at the Go level instead of fighting over the lock.
	db.SetMaxOpenConns(2)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			action      TEXT NOT NULL,
			module      TEXT NOT NULL DEFAULT '',
			page        INTEGER NOT NULL DEFAULT 0,
			detail      TEXT NOT NULL DEFAULT '',
			config_path TEXT NOT NULL DEFAULT '',
			approved    INTEGER NOT NULL DEFAULT 0,
			promoted    INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_module ON runs(module);
	`)
	return err
}

// Record inserts a run, filling CreatedAt if unset, and returns its id.
func (s *Store) Record(r *Run) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(`
		INSERT INTO runs (action, module, page, detail, config_path, approved, promoted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Action, r.Module, r.Page, r.Detail, r.ConfigPath,
		boolToInt(r.Approved), boolToInt(r.Promoted),
		r.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	r.ID, _ = res.LastInsertId()
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, action, module, page, detail, config_path, approved, promoted, created_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		var approved, promoted int
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Action, &r.Module, &r.Page, &r.Detail,
			&r.ConfigPath, &approved, &promoted, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Approved = approved != 0
		r.Promoted = promoted != 0
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
