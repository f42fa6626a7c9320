package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dunn/stacks/internal/catalog"
)

// selectBookFields contains the standard field list for SELECT queries.
const selectBookFields = `id, isbn, title, author, description, genres_json, publish_year, cover_url`

// UpsertBook inserts a book or replaces an existing one with the same ID,
// keeping the FTS index in step.
func (d *DB) UpsertBook(b catalog.Book) error {
	genres, err := json.Marshal(b.Genres)
	if err != nil {
		return fmt.Errorf("encoding genres: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO books
			(id, isbn, title, author, description, genres_json, publish_year, cover_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ISBN, b.Title, b.Author, b.Description, string(genres), b.PublishYear, b.CoverURL)
	if err != nil {
		return fmt.Errorf("upserting book %d: %w", b.ID, err)
	}

	if _, err := tx.Exec(`DELETE FROM books_fts WHERE id = ?`, b.ID); err != nil {
		return fmt.Errorf("clearing FTS row for book %d: %w", b.ID, err)
	}
	_, err = tx.Exec(`
		INSERT INTO books_fts (id, title, author, description, genres)
		VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Title, b.Author, b.Description, strings.Join(b.Genres, " "))
	if err != nil {
		return fmt.Errorf("indexing book %d: %w", b.ID, err)
	}

	return tx.Commit()
}

// GetBook retrieves a book by ID. Returns sql.ErrNoRows if absent.
func (d *DB) GetBook(id int) (catalog.Book, error) {
	row := d.db.QueryRow(`SELECT `+selectBookFields+` FROM books WHERE id = ?`, id)
	return scanBook(row)
}

// AllBooks returns every book in the catalog ordered by ID. This is the
// training snapshot handed to the recommender.
func (d *DB) AllBooks() ([]catalog.Book, error) {
	rows, err := d.db.Query(`SELECT ` + selectBookFields + ` FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()
	return collectBooks(rows)
}

// ListBooks returns up to limit books ordered by ID, starting after the
// given offset.
func (d *DB) ListBooks(limit, offset int) ([]catalog.Book, error) {
	rows, err := d.db.Query(
		`SELECT `+selectBookFields+` FROM books ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()
	return collectBooks(rows)
}

// SearchBooks runs a full-text query against title, author, description and
// genres and returns matching books in relevance order.
func (d *DB) SearchBooks(query string, limit int) ([]catalog.Book, error) {
	rows, err := d.db.Query(`
		SELECT `+prefixedBookFields("b")+`
		FROM books_fts f
		JOIN books b ON b.id = f.id
		WHERE books_fts MATCH ?
		ORDER BY rank
		LIMIT ?`,
		query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching books: %w", err)
	}
	defer rows.Close()
	return collectBooks(rows)
}

// CountBooks returns the number of books in the catalog.
func (d *DB) CountBooks() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting books: %w", err)
	}
	return n, nil
}

func prefixedBookFields(alias string) string {
	fields := strings.Split(selectBookFields, ", ")
	for i, f := range fields {
		fields[i] = alias + "." + strings.TrimSpace(f)
	}
	return strings.Join(fields, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (catalog.Book, error) {
	var b catalog.Book
	var isbn, author, description, genresJSON, coverURL sql.NullString
	var publishYear sql.NullInt64

	err := row.Scan(&b.ID, &isbn, &b.Title, &author, &description, &genresJSON, &publishYear, &coverURL)
	if err != nil {
		return catalog.Book{}, err
	}

	b.ISBN = isbn.String
	b.Author = author.String
	b.Description = description.String
	b.CoverURL = coverURL.String
	b.PublishYear = int(publishYear.Int64)
	if genresJSON.Valid && genresJSON.String != "" {
		if err := json.Unmarshal([]byte(genresJSON.String), &b.Genres); err != nil {
			return catalog.Book{}, fmt.Errorf("parsing genres for book %d: %w", b.ID, err)
		}
	}
	return b, nil
}

func collectBooks(rows *sql.Rows) ([]catalog.Book, error) {
	var books []catalog.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating books: %w", err)
	}
	return books, nil
}
