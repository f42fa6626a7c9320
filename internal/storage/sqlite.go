// Package storage handles catalog persistence in SQLite, plus JSONL
// reading and writing for import and export.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Book catalog
		CREATE TABLE IF NOT EXISTS books (
			id INTEGER PRIMARY KEY,
			isbn TEXT,
			title TEXT NOT NULL,
			author TEXT,
			description TEXT,
			genres_json TEXT,
			publish_year INTEGER,
			cover_url TEXT
		);

		-- Index for ISBN lookups during enrichment
		CREATE INDEX IF NOT EXISTS idx_books_isbn ON books(isbn) WHERE isbn IS NOT NULL AND isbn != '';

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS books_fts USING fts5(
			id,
			title,
			author,
			description,
			genres
		);

		-- One row per (user, book) pair; the training signal source
		CREATE TABLE IF NOT EXISTS user_activities (
			user_id INTEGER NOT NULL,
			book_id INTEGER NOT NULL,
			view_count INTEGER NOT NULL DEFAULT 0,
			is_favorite INTEGER NOT NULL DEFAULT 0,
			interaction_score REAL NOT NULL DEFAULT 0,
			last_viewed INTEGER NOT NULL,
			PRIMARY KEY (user_id, book_id)
		);

		CREATE INDEX IF NOT EXISTS idx_activities_viewed ON user_activities(last_viewed);

		-- Ratings feeding the trending aggregates
		CREATE TABLE IF NOT EXISTS reviews (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			book_id INTEGER NOT NULL,
			rating REAL NOT NULL,
			text TEXT,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_book ON reviews(book_id);

		-- Versioned recommendation model blobs, keyed by model name
		CREATE TABLE IF NOT EXISTS model_data (
			name TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			payload BLOB NOT NULL,
			trained_at INTEGER NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}
