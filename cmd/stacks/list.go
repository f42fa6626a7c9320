package main

import (
	"github.com/dunn/stacks/internal/catalog"
	"github.com/spf13/cobra"
)

var (
	listLimit  int
	listOffset int
)

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)

	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 50, "Maximum number of books")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Number of books to skip")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List books in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	books, err := db.ListBooks(listLimit, listOffset)
	if err != nil {
		exitWithError(ExitError, "listing books: %v", err)
	}
	total, err := db.CountBooks()
	if err != nil {
		exitWithError(ExitError, "counting books: %v", err)
	}

	if humanOutput {
		for _, b := range books {
			outputHuman("%d: %s by %s\n", b.ID, b.Title, b.Author)
		}
		outputHuman("(%d of %d books)\n", len(books), total)
		return nil
	}
	return outputJSON(struct {
		Books []catalog.Book `json:"books"`
		Total int            `json:"total"`
	}{books, total})
}

var getCmd = &cobra.Command{
	Use:   "get <book-id>",
	Short: "Show one book",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	bookID, err := parseID(args[0])
	if err != nil {
		exitWithError(ExitError, "invalid book id %q", args[0])
	}

	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	book, err := db.GetBook(bookID)
	if err != nil {
		exitWithError(ExitNotFound, "book %d not found", bookID)
	}

	if humanOutput {
		outputHuman("%s by %s (%d)\n", book.Title, book.Author, book.PublishYear)
		if len(book.Genres) > 0 {
			outputHuman("genres: %v\n", book.Genres)
		}
		if book.Description != "" {
			outputHuman("\n%s\n", book.Description)
		}
		return nil
	}
	return outputJSON(book)
}
