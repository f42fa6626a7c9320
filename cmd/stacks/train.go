package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(trainCmd)
}

// TrainResponse is the response for the train command.
type TrainResponse struct {
	Version      int `json:"version"`
	Books        int `json:"books"`
	Interactions int `json:"interactions"`
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the recommendation model from the current catalog",
	Long: `Fit the content and collaborative models from the full catalog and
activity snapshots and persist them as a new model version. Training is
synchronous and CPU-bound; at catalog scale it completes in seconds.

Concurrent trainings race with last-writer-wins semantics. Serialize
training externally if you need stronger guarantees.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func runTrain(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	books, err := db.AllBooks()
	if err != nil {
		exitWithError(ExitError, "reading catalog: %v", err)
	}
	if len(books) == 0 {
		exitWithError(ExitDataError, "catalog is empty\n\nImport books with 'stacks import books' first.")
	}

	interactions, err := db.AllInteractions()
	if err != nil {
		exitWithError(ExitError, "reading activities: %v", err)
	}

	rec := newRecommender(root, db)
	version, err := rec.Train(books, interactions)
	if err != nil {
		exitWithError(ExitError, "training: %v", err)
	}

	if humanOutput {
		outputHuman("Trained model version %d (%d books, %d interactions)\n", version, len(books), len(interactions))
		return nil
	}
	return outputJSON(TrainResponse{
		Version:      version,
		Books:        len(books),
		Interactions: len(interactions),
	})
}
