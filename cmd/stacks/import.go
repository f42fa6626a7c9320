package main

import (
	"context"
	"time"

	"github.com/dunn/stacks/internal/config"
	"github.com/dunn/stacks/internal/importer"
	"github.com/dunn/stacks/internal/openlibrary"
	"github.com/dunn/stacks/internal/pdf"
	"github.com/spf13/cobra"
)

var importEnrich bool

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importBooksCmd)
	importCmd.AddCommand(importActivitiesCmd)
	importCmd.AddCommand(importReviewsCmd)
	importCmd.AddCommand(importPDFCmd)

	importBooksCmd.Flags().BoolVar(&importEnrich, "enrich", false, "Fill missing metadata from Open Library by ISBN")
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import catalog data from files",
}

var importBooksCmd = &cobra.Command{
	Use:   "books <file.jsonl>",
	Short: "Import books from a JSONL file",
	Long: `Import books from a JSONL file, one book object per line:

  {"id": 1, "title": "...", "author": "...", "description": "...", "genres": ["..."], "isbn": "..."}

Existing books with the same id are replaced. With --enrich, books that
carry an ISBN get missing publish year, cover, and genres filled in from
Open Library (rate limited).`,
	Args: cobra.ExactArgs(1),
	RunE: runImportBooks,
}

func runImportBooks(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	var enricher importer.Enricher
	if importEnrich {
		global, err := config.LoadGlobalConfig()
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		var opts []openlibrary.ClientOption
		if global.OpenLibraryURL != "" {
			opts = append(opts, openlibrary.WithBaseURL(global.OpenLibraryURL))
		}
		if global.OpenLibraryRate > 0 {
			opts = append(opts, openlibrary.WithRateLimit(global.OpenLibraryRate))
		}
		enricher = openlibrary.NewClient(opts...)
	}

	result, err := importer.ImportBooks(context.Background(), db, args[0], enricher)
	if err != nil {
		exitWithError(ExitDataError, "importing books: %v", err)
	}

	if humanOutput {
		outputHuman("Imported %d books (%d enriched, %d skipped)\n", result.Imported, result.Enriched, result.Skipped)
		return nil
	}
	return outputJSON(result)
}

var importActivitiesCmd = &cobra.Command{
	Use:   "activities <file.jsonl>",
	Short: "Import user activity from a JSONL file",
	Long: `Import user activity from a JSONL file, one record per line:

  {"user_id": 1, "book_id": 2, "view_count": 3, "is_favorite": true}

Records replace any existing activity for the same (user, book) pair.
Interaction scores outside [0, 1] are recomputed from the view count and
favorite flag.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportActivities,
}

func runImportActivities(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	result, err := importer.ImportActivities(db, args[0], time.Now().UTC())
	if err != nil {
		exitWithError(ExitDataError, "importing activities: %v", err)
	}

	if humanOutput {
		outputHuman("Imported %d activities (%d skipped)\n", result.Imported, result.Skipped)
		return nil
	}
	return outputJSON(result)
}

var importReviewsCmd = &cobra.Command{
	Use:   "reviews <file.csv>",
	Short: "Import reviews from a CSV export",
	Long: `Import reviews from a CSV file with header columns user_id, book_id,
rating, text (extra columns are ignored). Each review also synthesizes an
activity row so reviewed books feed the collaborative model.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportReviews,
}

func runImportReviews(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	result, err := importer.ImportReviewsCSV(db, args[0], time.Now().UTC())
	if err != nil {
		exitWithError(ExitDataError, "importing reviews: %v", err)
	}

	if humanOutput {
		outputHuman("Imported %d reviews, %d activities (%d skipped)\n", result.Reviews, result.Activities, result.Skipped)
		return nil
	}
	return outputJSON(result)
}

var importPDFCmd = &cobra.Command{
	Use:   "pdf <book-id> <file.pdf>",
	Short: "Attach text extracted from a PDF as a book's description",
	Args:  cobra.ExactArgs(2),
	RunE:  runImportPDF,
}

func runImportPDF(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	bookID, err := parseID(args[0])
	if err != nil {
		exitWithError(ExitError, "invalid book id %q", args[0])
	}

	book, err := db.GetBook(bookID)
	if err != nil {
		exitWithError(ExitNotFound, "book %d not found", bookID)
	}

	description, err := pdf.ExtractDescription(args[1])
	if err != nil {
		exitWithError(ExitDataError, "extracting text: %v", err)
	}
	if description == "" {
		exitWithError(ExitDataError, "no text could be extracted from %s", args[1])
	}

	book.Description = description
	if err := db.UpsertBook(book); err != nil {
		exitWithError(ExitError, "updating book: %v", err)
	}

	if humanOutput {
		outputHuman("Attached %d characters of description to book %d\n", len(description), bookID)
		return nil
	}
	return outputJSON(struct {
		BookID      int `json:"book_id"`
		Description int `json:"description_length"`
	}{bookID, len(description)})
}
