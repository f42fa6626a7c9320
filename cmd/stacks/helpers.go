package main

import (
	"os"
	"strconv"

	"github.com/dunn/stacks/internal/config"
	"github.com/dunn/stacks/internal/recommend"
	"github.com/dunn/stacks/internal/storage"
)

// parseID parses a positive integer identifier argument.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}

// mustFindRepository locates the stacks repository or exits. The
// STACKS_ROOT environment variable overrides the working-directory search.
func mustFindRepository() string {
	start := os.Getenv("STACKS_ROOT")
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			exitWithError(ExitError, "getting current directory: %v", err)
		}
		start = cwd
	}

	root, err := config.FindRepository(start)
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'stacks init' to create a repository.", err)
	}
	return root
}

// mustOpenDB opens the repository database or exits.
func mustOpenDB(root string) *storage.DB {
	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// newRecommender builds a recommender over the repository database, using
// the configured model name if one is set.
func newRecommender(root string, db *storage.DB) *recommend.Recommender {
	cfg, err := config.Load(root)
	if err == nil && cfg.ModelName != "" {
		return recommend.NewNamed(db, cfg.ModelName)
	}
	return recommend.New(db)
}

// mustLoadModel loads the persisted model or exits with guidance.
func mustLoadModel(root string, db *storage.DB) *recommend.Recommender {
	rec := newRecommender(root, db)
	loaded, err := rec.Load()
	if err != nil {
		exitWithError(ExitError, "loading model: %v", err)
	}
	if !loaded {
		exitWithError(ExitNotTrained, "no trained model found\n\nRun 'stacks train' first.")
	}
	return rec
}
