// Package importer loads books, activities, and reviews into the catalog
// from JSONL and CSV files.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dunn/stacks/internal/catalog"
	"github.com/dunn/stacks/internal/openlibrary"
	"github.com/dunn/stacks/internal/storage"
)

// BookResult summarizes a book import.
type BookResult struct {
	Imported int `json:"imported"`
	Enriched int `json:"enriched"`
	Skipped  int `json:"skipped"`
}

// Enricher fills in book metadata by ISBN. *openlibrary.Client satisfies it.
type Enricher interface {
	LookupISBN(ctx context.Context, isbn string) (*openlibrary.Metadata, error)
}

// ImportBooks reads books from a JSONL file and upserts them into the
// catalog. Records without an ID or title are skipped, not fatal. When
// enricher is non-nil, books with an ISBN get missing metadata filled in
// from Open Library; lookup failures leave the record as imported.
func ImportBooks(ctx context.Context, db *storage.DB, path string, enricher Enricher) (*BookResult, error) {
	books, err := storage.ReadJSONL[catalog.Book](path)
	if err != nil {
		return nil, fmt.Errorf("reading books: %w", err)
	}

	result := &BookResult{}
	for _, b := range books {
		if b.ID == 0 || b.Title == "" {
			result.Skipped++
			continue
		}

		if enricher != nil && b.ISBN != "" {
			if enriched, err := enrichBook(ctx, enricher, b); err == nil {
				b = enriched
				result.Enriched++
			} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
		}

		if err := db.UpsertBook(b); err != nil {
			return nil, fmt.Errorf("importing book %d: %w", b.ID, err)
		}
		result.Imported++
	}
	return result, nil
}

// enrichBook fills empty fields from Open Library metadata. Existing values
// always win; enrichment never overwrites catalog data.
func enrichBook(ctx context.Context, enricher Enricher, b catalog.Book) (catalog.Book, error) {
	meta, err := enricher.LookupISBN(ctx, b.ISBN)
	if err != nil {
		return b, err
	}
	if b.PublishYear == 0 {
		b.PublishYear = meta.PublishYear
	}
	if b.CoverURL == "" {
		b.CoverURL = meta.CoverURL
	}
	if len(b.Genres) == 0 {
		b.Genres = meta.Subjects
	}
	return b, nil
}
