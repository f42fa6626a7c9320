package main

import (
	"errors"

	"github.com/dunn/stacks/internal/config"
	"github.com/dunn/stacks/internal/recommend"
	"github.com/spf13/cobra"
)

var (
	recommendUser    int
	recommendBook    int
	recommendN       int
	recommendContent float64
	recommendCollab  float64
)

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().IntVarP(&recommendUser, "user", "u", 0, "User anchor: recommend from this user's history")
	recommendCmd.Flags().IntVarP(&recommendBook, "book", "b", 0, "Book anchor: recommend books similar to this one")
	recommendCmd.Flags().IntVarP(&recommendN, "limit", "n", recommend.DefaultN, "Maximum number of recommendations")
	recommendCmd.Flags().Float64Var(&recommendContent, "content-weight", 0, "Content similarity weight (default 0.3)")
	recommendCmd.Flags().Float64Var(&recommendCollab, "collab-weight", 0, "Collaborative score weight (default 0.7)")
}

// RecommendResponse is the response for the recommend command.
type RecommendResponse struct {
	Candidates []recommend.Candidate `json:"candidates"`
	Total      int                   `json:"total"`
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get hybrid book recommendations",
	Long: `Blend content similarity and collaborative filtering into a ranked
recommendation list. At least one anchor is required: --user scores the
whole catalog with the collaborative model, --book pulls content
neighbors of that book, and together they merge additively.`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if recommendUser == 0 && recommendBook == 0 {
		exitWithError(ExitError, "either --user or --book is required")
	}

	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	rec := mustLoadModel(root, db)

	req := recommend.Request{
		N:             recommendN,
		ContentWeight: recommendContent,
		CollabWeight:  recommendCollab,
	}
	if recommendUser != 0 {
		req.UserID = &recommendUser
	}
	if recommendBook != 0 {
		req.BookID = &recommendBook
	}
	// Fall back to configured weights when flags are unset
	if req.ContentWeight == 0 && req.CollabWeight == 0 {
		if cfg, err := config.Load(root); err == nil {
			req.ContentWeight = cfg.ContentWeight
			req.CollabWeight = cfg.CollabWeight
		}
	}

	candidates, err := rec.Recommend(req)
	if errors.Is(err, recommend.ErrInvalidRequest) {
		exitWithError(ExitError, "%v", err)
	}
	if errors.Is(err, recommend.ErrModelNotTrained) {
		exitWithError(ExitNotTrained, "model not trained for the requested anchors\n\nRun 'stacks train' first.")
	}
	if err != nil {
		exitWithError(ExitError, "recommending: %v", err)
	}

	if humanOutput {
		for i, c := range candidates {
			outputHuman("%2d. book %d  score %.4f  %s\n", i+1, c.BookID, c.Score, c.Reason)
		}
		return nil
	}
	return outputJSON(RecommendResponse{Candidates: candidates, Total: len(candidates)})
}
