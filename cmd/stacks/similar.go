package main

import (
	"github.com/dunn/stacks/internal/content"
	"github.com/dunn/stacks/internal/recommend"
	"github.com/spf13/cobra"
)

var similarLimit int

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", recommend.DefaultN, "Maximum number of results")
}

// SimilarResponse is the response for the similar command.
type SimilarResponse struct {
	BookID    int                `json:"book_id"`
	Neighbors []content.Neighbor `json:"neighbors"`
	Total     int                `json:"total"`
}

var similarCmd = &cobra.Command{
	Use:   "similar <book-id>",
	Short: "Find books with similar content",
	Long: `Rank books by cosine similarity to the given book in the fitted
TF-IDF space. The queried book must have been in the catalog when the
model was trained.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	bookID, err := parseID(args[0])
	if err != nil {
		exitWithError(ExitError, "invalid book id %q", args[0])
	}

	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	rec := mustLoadModel(root, db)

	neighbors, err := rec.ContentNeighbors(bookID, similarLimit)
	if recommend.IsNotFound(err) {
		exitWithError(ExitNotFound, "book %d was not in the catalog at training time", bookID)
	}
	if err != nil {
		exitWithError(ExitError, "finding similar books: %v", err)
	}

	if humanOutput {
		for i, n := range neighbors {
			outputHuman("%2d. book %d  similarity %.4f\n", i+1, n.BookID, n.Similarity)
		}
		return nil
	}
	return outputJSON(SimilarResponse{BookID: bookID, Neighbors: neighbors, Total: len(neighbors)})
}
