package main

import (
	"time"

	"github.com/dunn/stacks/internal/catalog"
	"github.com/spf13/cobra"
)

var (
	activityFavoriteOnly bool
	activityLimit        int
)

func init() {
	rootCmd.AddCommand(activityCmd)
	activityCmd.AddCommand(activityViewCmd)
	activityCmd.AddCommand(activityFavoriteCmd)
	activityCmd.AddCommand(activityListCmd)

	activityListCmd.Flags().BoolVar(&activityFavoriteOnly, "favorites", false, "Only favorited books")
	activityListCmd.Flags().IntVarP(&activityLimit, "limit", "n", 100, "Maximum number of rows")
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Record and inspect user activity",
	Long: `User activity is the training signal for the collaborative model.
Views and favorites roll up into an interaction score in [0, 1]: a
favorite contributes 0.5, each view 0.1 up to 0.4.`,
}

var activityViewCmd = &cobra.Command{
	Use:   "view <user-id> <book-id>",
	Short: "Record a book view",
	Args:  cobra.ExactArgs(2),
	RunE:  runActivityView,
}

func runActivityView(cmd *cobra.Command, args []string) error {
	return recordActivity(args, func(userID, bookID int) (catalog.Activity, error) {
		root := mustFindRepository()
		db := mustOpenDB(root)
		defer db.Close()

		if _, err := db.GetBook(bookID); err != nil {
			exitWithError(ExitNotFound, "book %d not found", bookID)
		}
		return db.RecordView(userID, bookID, time.Now().UTC())
	})
}

var activityFavoriteCmd = &cobra.Command{
	Use:   "favorite <user-id> <book-id>",
	Short: "Toggle a book's favorite status",
	Args:  cobra.ExactArgs(2),
	RunE:  runActivityFavorite,
}

func runActivityFavorite(cmd *cobra.Command, args []string) error {
	return recordActivity(args, func(userID, bookID int) (catalog.Activity, error) {
		root := mustFindRepository()
		db := mustOpenDB(root)
		defer db.Close()

		if _, err := db.GetBook(bookID); err != nil {
			exitWithError(ExitNotFound, "book %d not found", bookID)
		}
		return db.ToggleFavorite(userID, bookID, time.Now().UTC())
	})
}

func recordActivity(args []string, op func(userID, bookID int) (catalog.Activity, error)) error {
	userID, err := parseID(args[0])
	if err != nil {
		exitWithError(ExitError, "invalid user id %q", args[0])
	}
	bookID, err := parseID(args[1])
	if err != nil {
		exitWithError(ExitError, "invalid book id %q", args[1])
	}

	activity, err := op(userID, bookID)
	if err != nil {
		exitWithError(ExitError, "recording activity: %v", err)
	}

	if humanOutput {
		outputHuman("user %d, book %d: %d views, favorite=%t, score %.2f\n",
			activity.UserID, activity.BookID, activity.ViewCount, activity.IsFavorite, activity.InteractionScore)
		return nil
	}
	return outputJSON(activity)
}

var activityListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List a user's activity, most recent first",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivityList,
}

func runActivityList(cmd *cobra.Command, args []string) error {
	userID, err := parseID(args[0])
	if err != nil {
		exitWithError(ExitError, "invalid user id %q", args[0])
	}

	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	activities, err := db.ListActivities(userID, activityFavoriteOnly, activityLimit)
	if err != nil {
		exitWithError(ExitError, "listing activity: %v", err)
	}

	if humanOutput {
		for _, a := range activities {
			outputHuman("book %d: %d views, favorite=%t, score %.2f, last viewed %s\n",
				a.BookID, a.ViewCount, a.IsFavorite, a.InteractionScore, a.LastViewed.Format("2006-01-02"))
		}
		return nil
	}
	return outputJSON(struct {
		UserID     int                `json:"user_id"`
		Activities []catalog.Activity `json:"activities"`
		Total      int                `json:"total"`
	}{userID, activities, len(activities)})
}
