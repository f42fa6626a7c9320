package trending

import (
	"math"
	"testing"

	"github.com/dunn/stacks/internal/storage"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		views     int
		ratings   int
		avgRating float64
		want      float64
	}{
		{"no signal", 0, 0, 0, 0},
		{"views only, half cap", 50, 0, 0, 0.4 * 0.5},
		{"views at cap", 100, 0, 0, 0.4},
		{"views over cap", 500, 0, 0, 0.4},
		{"ratings only, half cap", 0, 25, 3.0, 0.6 * (0.7*0.5 + 0.3*0.5)},
		{"everything maxed", 100, 50, 5.0, 1.0},
		{"minimum rated", 0, 1, 1.0, 0.6 * (0.7 * (1.0 / 50))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.views, tt.ratings, tt.avgRating)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score(%d, %d, %v) = %v, want %v", tt.views, tt.ratings, tt.avgRating, got, tt.want)
			}
		})
	}
}

func TestScoreUnratedSkipsAverageTerm(t *testing.T) {
	// avgRating 0 means "no reviews": the average must contribute nothing
	// rather than a negative rescaled value.
	got := Score(10, 0, 0)
	want := 0.4 * 0.1
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Score with no ratings = %v, want %v", got, want)
	}
}

func TestRankOrdersByScoreThenAverage(t *testing.T) {
	rows := []storage.TrendingRow{
		{BookID: 1, RecentViews: 10, RecentRatings: 0, AverageRating: 0},
		{BookID: 2, RecentViews: 90, RecentRatings: 10, AverageRating: 4.5},
		{BookID: 3, RecentViews: 10, RecentRatings: 0, AverageRating: 0},
	}

	got := Rank(rows, 10)
	if len(got) != 3 {
		t.Fatalf("got %d books, want 3", len(got))
	}
	if got[0].BookID != 2 {
		t.Errorf("top book = %d, want 2", got[0].BookID)
	}
	// Books 1 and 3 tie on both score and average; stable sort keeps input
	// order.
	if got[1].BookID != 1 || got[2].BookID != 3 {
		t.Errorf("tie order = [%d, %d], want [1, 3]", got[1].BookID, got[2].BookID)
	}
}

func TestRankLimit(t *testing.T) {
	rows := []storage.TrendingRow{
		{BookID: 1, RecentViews: 30},
		{BookID: 2, RecentViews: 20},
		{BookID: 3, RecentViews: 10},
	}
	got := Rank(rows, 2)
	if len(got) != 2 {
		t.Fatalf("got %d books, want 2", len(got))
	}
	if got[0].BookID != 1 || got[1].BookID != 2 {
		t.Errorf("order = [%d, %d], want [1, 2]", got[0].BookID, got[1].BookID)
	}
}
