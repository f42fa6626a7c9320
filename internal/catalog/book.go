// Package catalog defines the core domain types for the book catalog.
package catalog

import "strings"

// Book represents a single catalog entry.
type Book struct {
	// Identity
	ID   int    `json:"id"`             // Internal stable identifier
	ISBN string `json:"isbn,omitempty"` // Used for metadata enrichment

	// Metadata
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Genres      []string `json:"genres,omitempty"`

	// Optional enrichment fields (populated from Open Library)
	PublishYear int    `json:"publish_year,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
}

// ContentDocument returns the text blob used for content-model fitting.
// Field order is fixed: title, author, description, genres.
func (b Book) ContentDocument() string {
	parts := make([]string, 0, 4)
	parts = append(parts, b.Title, b.Author, b.Description)
	if len(b.Genres) > 0 {
		parts = append(parts, strings.Join(b.Genres, " "))
	}
	return strings.Join(parts, " ")
}
