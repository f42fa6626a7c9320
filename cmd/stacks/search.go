package main

import (
	"strings"

	"github.com/dunn/stacks/internal/catalog"
	"github.com/spf13/cobra"
)

var searchLimit int

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 50, "Maximum number of results")
}

// SearchResponse is the response for the search command.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []catalog.Book `json:"results"`
	Total   int            `json:"total"`
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over title, author, description, and genres",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(args[0])
	if query == "" {
		exitWithError(ExitError, "search query cannot be empty")
	}

	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	results, err := db.SearchBooks(query, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if humanOutput {
		for _, b := range results {
			outputHuman("%d: %s by %s\n", b.ID, b.Title, b.Author)
		}
		return nil
	}
	return outputJSON(SearchResponse{Query: query, Results: results, Total: len(results)})
}
