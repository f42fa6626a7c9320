// Package trending computes a windowed popularity/quality blend straight
// from raw activity and rating aggregates. It shares no state with the
// trained hybrid model.
package trending

import (
	"sort"
	"time"

	"github.com/dunn/stacks/internal/storage"
)

const (
	// DefaultWindowDays is the default recency window.
	DefaultWindowDays = 7

	// DefaultLimit is the default result count.
	DefaultLimit = 10

	// Normalization caps: books at or above these counts score the
	// maximum for that component.
	ViewCap   = 100
	RatingCap = 50

	// Blend weights.
	viewWeight        = 0.4
	ratingWeight      = 0.6
	ratingCountWeight = 0.7
	avgRatingWeight   = 0.3
)

// Book is one entry in a trending ranking.
type Book struct {
	BookID        int     `json:"book_id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	TrendingScore float64 `json:"trending_score"`
	RecentViews   int     `json:"recent_views"`
	RecentRatings int     `json:"recent_ratings"`
	AverageRating float64 `json:"average_rating"`
}

// Score blends the raw aggregates for one book:
//
//	0.4*min(views/100, 1) + 0.6*(0.7*min(ratings/50, 1) + 0.3*(avg-1)/4)
//
// Views and rating counts are capped; the 1-5 average rating is rescaled to
// [0, 1]. A book at every cap with a 5.0 average scores exactly 1.0.
func Score(views, ratings int, avgRating float64) float64 {
	normViews := cappedRatio(views, ViewCap)
	normRatings := cappedRatio(ratings, RatingCap)
	normAvg := 0.0
	if avgRating > 0 {
		normAvg = (avgRating - 1) / 4
	}
	return viewWeight*normViews + ratingWeight*(ratingCountWeight*normRatings+avgRatingWeight*normAvg)
}

func cappedRatio(n, ceiling int) float64 {
	if n >= ceiling {
		return 1.0
	}
	return float64(n) / float64(ceiling)
}

// Rank scores aggregate rows and sorts them: trending score descending,
// then average rating descending, truncated to limit.
func Rank(rows []storage.TrendingRow, limit int) []Book {
	books := make([]Book, len(rows))
	for i, r := range rows {
		books[i] = Book{
			BookID:        r.BookID,
			Title:         r.Title,
			Author:        r.Author,
			TrendingScore: Score(r.RecentViews, r.RecentRatings, r.AverageRating),
			RecentViews:   r.RecentViews,
			RecentRatings: r.RecentRatings,
			AverageRating: r.AverageRating,
		}
	}
	sort.SliceStable(books, func(i, j int) bool {
		if books[i].TrendingScore != books[j].TrendingScore {
			return books[i].TrendingScore > books[j].TrendingScore
		}
		return books[i].AverageRating > books[j].AverageRating
	})
	if limit > 0 && len(books) > limit {
		books = books[:limit]
	}
	return books
}

// Compute gathers aggregates for the window ending now and ranks them.
func Compute(db *storage.DB, limit, windowDays int, now time.Time) ([]Book, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	rows, err := db.TrendingAggregates(now.AddDate(0, 0, -windowDays))
	if err != nil {
		return nil, err
	}
	return Rank(rows, limit), nil
}
