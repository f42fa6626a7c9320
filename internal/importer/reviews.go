package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dunn/stacks/internal/catalog"
	"github.com/dunn/stacks/internal/storage"
)

// favoriteRatingThreshold marks a review as implying a favorite when
// synthesizing activity rows.
const favoriteRatingThreshold = 4.0

// ReviewResult summarizes a review CSV import.
type ReviewResult struct {
	Reviews    int `json:"reviews"`
	Activities int `json:"activities"`
	Skipped    int `json:"skipped"`
}

// ImportReviewsCSV reads an Amazon-style review export (header columns:
// user_id, book_id, rating, text; extra columns ignored) and stores each
// row as a review plus a synthesized activity: one view, favorited when the
// rating is at least 4.
func ImportReviewsCSV(db *storage.DB, path string, now time.Time) (*ReviewResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening reviews file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows; they are skipped below

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"user_id", "book_id", "rating"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	result := &ReviewResult{}
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line+1, err)
		}
		line++

		review, ok := parseReview(record, cols, now)
		if !ok {
			result.Skipped++
			continue
		}

		if err := db.AddReview(review); err != nil {
			return nil, fmt.Errorf("storing review at line %d: %w", line, err)
		}
		result.Reviews++

		activity := catalog.Activity{
			UserID:     review.UserID,
			BookID:     review.BookID,
			ViewCount:  1,
			IsFavorite: review.Rating >= favoriteRatingThreshold,
			LastViewed: review.CreatedAt,
		}
		activity.InteractionScore = activity.Score()
		if err := db.PutActivity(activity); err != nil {
			return nil, fmt.Errorf("storing activity at line %d: %w", line, err)
		}
		result.Activities++
	}
	return result, nil
}

func parseReview(record []string, cols map[string]int, now time.Time) (catalog.Rating, bool) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	userID, err := strconv.Atoi(field("user_id"))
	if err != nil || userID == 0 {
		return catalog.Rating{}, false
	}
	bookID, err := strconv.Atoi(field("book_id"))
	if err != nil || bookID == 0 {
		return catalog.Rating{}, false
	}
	rating, err := strconv.ParseFloat(field("rating"), 64)
	if err != nil || rating < 1 || rating > 5 {
		return catalog.Rating{}, false
	}

	return catalog.Rating{
		UserID:    userID,
		BookID:    bookID,
		Rating:    rating,
		Text:      field("text"),
		CreatedAt: now,
	}, true
}
