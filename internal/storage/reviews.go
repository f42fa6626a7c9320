package storage

import (
	"fmt"
	"time"

	"github.com/dunn/stacks/internal/catalog"
)

// AddReview stores a rating row.
func (d *DB) AddReview(r catalog.Rating) error {
	_, err := d.db.Exec(`
		INSERT INTO reviews (user_id, book_id, rating, text, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.UserID, r.BookID, r.Rating, r.Text, r.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("storing review (%d, %d): %w", r.UserID, r.BookID, err)
	}
	return nil
}

// CountReviews returns the number of stored reviews.
func (d *DB) CountReviews() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM reviews`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting reviews: %w", err)
	}
	return n, nil
}

// TrendingRow holds the raw per-book aggregates the trending scorer blends.
// Only books with activity inside the window appear.
type TrendingRow struct {
	BookID        int
	Title         string
	Author        string
	RecentViews   int     // activity rows touched within the window
	RecentRatings int     // reviews created within the window
	AverageRating float64 // mean rating over all reviews, 0 if unrated
}

// TrendingAggregates gathers view and rating aggregates for books with
// activity since the cutoff.
func (d *DB) TrendingAggregates(cutoff time.Time) ([]TrendingRow, error) {
	rows, err := d.db.Query(`
		SELECT
			b.id,
			b.title,
			b.author,
			COUNT(a.user_id) AS recent_views,
			COALESCE((SELECT COUNT(*) FROM reviews r
				WHERE r.book_id = b.id AND r.created_at >= ?), 0) AS recent_ratings,
			COALESCE((SELECT AVG(r.rating) FROM reviews r
				WHERE r.book_id = b.id), 0) AS average_rating
		FROM books b
		JOIN user_activities a ON a.book_id = b.id
		WHERE a.last_viewed >= ?
		GROUP BY b.id
		ORDER BY recent_views DESC, average_rating DESC`,
		cutoff.Unix(), cutoff.Unix())
	if err != nil {
		return nil, fmt.Errorf("querying trending aggregates: %w", err)
	}
	defer rows.Close()

	var out []TrendingRow
	for rows.Next() {
		var t TrendingRow
		if err := rows.Scan(&t.BookID, &t.Title, &t.Author, &t.RecentViews, &t.RecentRatings, &t.AverageRating); err != nil {
			return nil, fmt.Errorf("scanning trending row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trending rows: %w", err)
	}
	return out, nil
}
