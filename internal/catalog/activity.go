package catalog

import "time"

// Interaction score weights. A favorite is worth half the maximum score;
// repeated views contribute the rest, capped so that views alone cannot
// saturate the scale.
const (
	FavoriteScore  = 0.5
	ViewScore      = 0.1
	ViewScoreCap   = 0.4
	MaxInteraction = 1.0
)

// Activity tracks one user's interaction history with one book.
type Activity struct {
	UserID           int       `json:"user_id"`
	BookID           int       `json:"book_id"`
	ViewCount        int       `json:"view_count"`
	IsFavorite       bool      `json:"is_favorite"`
	InteractionScore float64   `json:"interaction_score"`
	LastViewed       time.Time `json:"last_viewed"`
}

// Score recomputes the interaction score from the view count and favorite
// flag. The result is always in [0, 1].
func (a Activity) Score() float64 {
	score := 0.0
	if a.IsFavorite {
		score += FavoriteScore
	}
	views := float64(a.ViewCount) * ViewScore
	if views > ViewScoreCap {
		views = ViewScoreCap
	}
	score += views
	if score > MaxInteraction {
		score = MaxInteraction
	}
	return score
}

// Rating is a user's review of a book on a 1-5 scale.
type Rating struct {
	UserID    int       `json:"user_id"`
	BookID    int       `json:"book_id"`
	Rating    float64   `json:"rating"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
