package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps DB access for a single user_id scope. Every query issued
// through it is filtered by UserID (spec.md §3's "Session context").
type Store struct {
	DB     *sql.DB
	UserID string
}

// Open opens the SQLite database, enables foreign-key enforcement (off by
// default in SQLite — required for the ON DELETE CASCADE rules in §3/§4.3
// to fire), and runs migrations.
func Open(path, userID string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", path))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	store := &Store{DB: db, UserID: userID}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// migrate applies the folders/notes schema (spec.md §3, §6).
func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			parent_id TEXT,
			title TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(parent_id) REFERENCES folders(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			parent_id TEXT,
			title TEXT NOT NULL,
			syntax TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(parent_id) REFERENCES folders(id) ON DELETE CASCADE
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_folders_scope ON folders(user_id, IFNULL(parent_id, ''), title);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_notes_scope ON notes(user_id, IFNULL(parent_id, ''), title, syntax);`,
		`CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(user_id, parent_id);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_parent ON notes(user_id, parent_id);`,
	}
	for _, stmt := range statements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
