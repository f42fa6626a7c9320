package main

import (
	"errors"

	"github.com/dunn/stacks/internal/recommend"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(modelCmd)
	modelCmd.AddCommand(modelInfoCmd)
	modelCmd.AddCommand(modelPredictCmd)
}

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect the trained recommendation model",
}

var modelInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the installed model's version and dimensions",
	Args:  cobra.NoArgs,
	RunE:  runModelInfo,
}

func runModelInfo(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	rec := mustLoadModel(root, db)
	info, err := rec.Info()
	if err != nil {
		exitWithError(ExitNotTrained, "%v", err)
	}

	if humanOutput {
		outputHuman("model %s version %d\ntrained %s\n%d books, %d users, %d interactions, %d vocabulary terms\n",
			info.Name, info.Version, info.TrainedAt.Format("2006-01-02 15:04:05"),
			info.Books, info.Users, info.Interactions, info.Vocabulary)
		return nil
	}
	return outputJSON(info)
}

var modelPredictCmd = &cobra.Command{
	Use:   "predict <user-id> <book-id>",
	Short: "Predict one user's interaction score for one book",
	Long: `Score a (user, book) pair with the collaborative model. Pairs unseen
at training time fall back to bias terms and ultimately the global mean;
cold start is never an error.`,
	Args: cobra.ExactArgs(2),
	RunE: runModelPredict,
}

func runModelPredict(cmd *cobra.Command, args []string) error {
	userID, err := parseID(args[0])
	if err != nil {
		exitWithError(ExitError, "invalid user id %q", args[0])
	}
	bookID, err := parseID(args[1])
	if err != nil {
		exitWithError(ExitError, "invalid book id %q", args[1])
	}

	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	rec := mustLoadModel(root, db)
	score, err := rec.Predict(userID, bookID)
	if errors.Is(err, recommend.ErrModelNotTrained) {
		exitWithError(ExitNotTrained, "%v", err)
	}
	if err != nil {
		exitWithError(ExitError, "predicting: %v", err)
	}

	if humanOutput {
		outputHuman("predicted score %.4f for user %d on book %d\n", score, userID, bookID)
		return nil
	}
	return outputJSON(struct {
		UserID int     `json:"user_id"`
		BookID int     `json:"book_id"`
		Score  float64 `json:"score"`
	}{userID, bookID, score})
}
