package main

import (
	"time"

	"github.com/dunn/stacks/internal/trending"
	"github.com/spf13/cobra"
)

var (
	trendingLimit int
	trendingDays  int
)

func init() {
	rootCmd.AddCommand(trendingCmd)

	trendingCmd.Flags().IntVarP(&trendingLimit, "limit", "n", trending.DefaultLimit, "Maximum number of results")
	trendingCmd.Flags().IntVarP(&trendingDays, "days", "d", trending.DefaultWindowDays, "Recency window in days")
}

// TrendingResponse is the response for the trending command.
type TrendingResponse struct {
	Books      []trending.Book `json:"books"`
	Total      int             `json:"total"`
	WindowDays int             `json:"window_days"`
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List trending books",
	Long: `Rank books by a windowed blend of recent views, rating volume, and
average rating, computed directly from stored activity. No trained model
is involved.`,
	Args: cobra.NoArgs,
	RunE: runTrending,
}

func runTrending(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	books, err := trending.Compute(db, trendingLimit, trendingDays, time.Now().UTC())
	if err != nil {
		exitWithError(ExitError, "computing trending books: %v", err)
	}

	if humanOutput {
		for i, b := range books {
			outputHuman("%2d. %s by %s  score %.4f  (%d views, %d ratings, avg %.1f)\n",
				i+1, b.Title, b.Author, b.TrendingScore, b.RecentViews, b.RecentRatings, b.AverageRating)
		}
		return nil
	}
	return outputJSON(TrendingResponse{Books: books, Total: len(books), WindowDays: trendingDays})
}
