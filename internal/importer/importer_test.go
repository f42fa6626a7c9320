package importer

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dunn/stacks/internal/openlibrary"
	"github.com/dunn/stacks/internal/storage"
)

func testDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "stacks.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeFixture(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

// fakeEnricher returns canned metadata, recording the ISBNs it was asked for.
type fakeEnricher struct {
	meta    map[string]*openlibrary.Metadata
	lookups []string
	err     error
}

func (f *fakeEnricher) LookupISBN(_ context.Context, isbn string) (*openlibrary.Metadata, error) {
	f.lookups = append(f.lookups, isbn)
	if f.err != nil {
		return nil, f.err
	}
	if m, ok := f.meta[isbn]; ok {
		return m, nil
	}
	return nil, openlibrary.ErrNotFound
}

func TestImportBooks(t *testing.T) {
	db := testDB(t)
	path := writeFixture(t, "books.jsonl", `{"id": 1, "title": "The Dragon Keep", "author": "Ana Reyes"}
{"id": 2, "title": "Orbital Decay"}
{"title": "No ID"}
{"id": 3}
`)

	result, err := ImportBooks(context.Background(), db, path, nil)
	if err != nil {
		t.Fatalf("ImportBooks: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("imported = %d, want 2", result.Imported)
	}
	if result.Skipped != 2 {
		t.Errorf("skipped = %d, want 2 (missing id, missing title)", result.Skipped)
	}
	if result.Enriched != 0 {
		t.Errorf("enriched = %d without an enricher", result.Enriched)
	}

	got, err := db.GetBook(1)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "The Dragon Keep" {
		t.Errorf("imported title = %q", got.Title)
	}
}

func TestImportBooksEnrichment(t *testing.T) {
	db := testDB(t)
	path := writeFixture(t, "books.jsonl", `{"id": 1, "title": "Known", "isbn": "111", "publish_year": 1999}
{"id": 2, "title": "Sparse", "isbn": "222"}
{"id": 3, "title": "No ISBN"}
`)
	enricher := &fakeEnricher{meta: map[string]*openlibrary.Metadata{
		"111": {PublishYear: 2020, CoverURL: "https://covers.example.org/111.jpg"},
		"222": {PublishYear: 2021, CoverURL: "https://covers.example.org/222.jpg",
			Subjects: []string{"fiction"}},
	}}

	result, err := ImportBooks(context.Background(), db, path, enricher)
	if err != nil {
		t.Fatalf("ImportBooks: %v", err)
	}
	if result.Imported != 3 || result.Enriched != 2 {
		t.Errorf("result = %+v, want 3 imported, 2 enriched", result)
	}
	if len(enricher.lookups) != 2 {
		t.Errorf("lookups = %v, want only books with an ISBN", enricher.lookups)
	}

	// Existing values win over enrichment.
	known, err := db.GetBook(1)
	if err != nil {
		t.Fatalf("GetBook(1): %v", err)
	}
	if known.PublishYear != 1999 {
		t.Errorf("publish year = %d, enrichment overwrote catalog data", known.PublishYear)
	}
	if known.CoverURL == "" {
		t.Error("empty cover should be filled from enrichment")
	}

	sparse, err := db.GetBook(2)
	if err != nil {
		t.Fatalf("GetBook(2): %v", err)
	}
	if sparse.PublishYear != 2021 || len(sparse.Genres) != 1 {
		t.Errorf("sparse book not enriched: %+v", sparse)
	}
}

func TestImportBooksEnrichmentFailureNotFatal(t *testing.T) {
	db := testDB(t)
	path := writeFixture(t, "books.jsonl", `{"id": 1, "title": "A", "isbn": "999"}
`)
	enricher := &fakeEnricher{err: errors.New("upstream down")}

	result, err := ImportBooks(context.Background(), db, path, enricher)
	if err != nil {
		t.Fatalf("ImportBooks: %v", err)
	}
	if result.Imported != 1 || result.Enriched != 0 {
		t.Errorf("result = %+v, want imported without enrichment", result)
	}
}

func TestImportBooksCanceledContext(t *testing.T) {
	db := testDB(t)
	path := writeFixture(t, "books.jsonl", `{"id": 1, "title": "A", "isbn": "999"}
`)
	enricher := &fakeEnricher{err: context.Canceled}

	if _, err := ImportBooks(context.Background(), db, path, enricher); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled to abort the import", err)
	}
}

func TestImportActivities(t *testing.T) {
	db := testDB(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	path := writeFixture(t, "activities.jsonl", `{"user_id": 10, "book_id": 1, "view_count": 2, "is_favorite": true, "interaction_score": 0.7, "last_viewed": "2025-05-01T00:00:00Z"}
{"user_id": 10, "book_id": 2, "view_count": 3, "interaction_score": 9.5}
{"book_id": 3}
`)

	result, err := ImportActivities(db, path, now)
	if err != nil {
		t.Fatalf("ImportActivities: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 1 {
		t.Errorf("result = %+v, want 2 imported, 1 skipped", result)
	}

	// In-range scores are kept verbatim.
	a, err := db.GetActivity(10, 1)
	if err != nil {
		t.Fatalf("GetActivity(10, 1): %v", err)
	}
	if math.Abs(a.InteractionScore-0.7) > 1e-9 {
		t.Errorf("score = %v, want imported 0.7", a.InteractionScore)
	}

	// Out-of-range scores are recomputed, missing timestamps defaulted.
	b, err := db.GetActivity(10, 2)
	if err != nil {
		t.Fatalf("GetActivity(10, 2): %v", err)
	}
	if math.Abs(b.InteractionScore-0.3) > 1e-9 {
		t.Errorf("score = %v, want recomputed 0.3", b.InteractionScore)
	}
	if !b.LastViewed.Equal(now) {
		t.Errorf("last viewed = %v, want defaulted to %v", b.LastViewed, now)
	}
}

func TestImportReviewsCSV(t *testing.T) {
	db := testDB(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	path := writeFixture(t, "reviews.csv", `user_id,book_id,rating,text
10,1,5,Loved it
10,2,3,Fine
bad,2,3,
20,1,9,
20,3,4.5,Great
`)

	result, err := ImportReviewsCSV(db, path, now)
	if err != nil {
		t.Fatalf("ImportReviewsCSV: %v", err)
	}
	if result.Reviews != 3 || result.Activities != 3 {
		t.Errorf("result = %+v, want 3 reviews and 3 activities", result)
	}
	if result.Skipped != 2 {
		t.Errorf("skipped = %d, want 2 (bad user id, out-of-range rating)", result.Skipped)
	}

	n, err := db.CountReviews()
	if err != nil {
		t.Fatalf("CountReviews: %v", err)
	}
	if n != 3 {
		t.Errorf("stored reviews = %d, want 3", n)
	}

	// Rating 5 implies a favorite, rating 3 does not.
	fav, err := db.GetActivity(10, 1)
	if err != nil {
		t.Fatalf("GetActivity(10, 1): %v", err)
	}
	if !fav.IsFavorite {
		t.Error("rating 5 should synthesize a favorited activity")
	}
	if math.Abs(fav.InteractionScore-0.6) > 1e-9 {
		t.Errorf("score = %v, want 0.6 (favorite + one view)", fav.InteractionScore)
	}

	plain, err := db.GetActivity(10, 2)
	if err != nil {
		t.Fatalf("GetActivity(10, 2): %v", err)
	}
	if plain.IsFavorite {
		t.Error("rating 3 should not favorite")
	}
}

func TestImportReviewsCSVMissingColumn(t *testing.T) {
	db := testDB(t)
	path := writeFixture(t, "reviews.csv", "user_id,rating\n10,5\n")

	if _, err := ImportReviewsCSV(db, path, time.Now()); err == nil {
		t.Error("expected error for missing book_id column")
	}
}
