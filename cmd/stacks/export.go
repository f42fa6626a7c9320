package main

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/dunn/stacks/internal/storage"
	"github.com/spf13/cobra"
)

var exportFormat string

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "jsonl", "Output format: jsonl or csv")
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the book catalog to a file",
	Long: `Write the full catalog to a JSONL file (the same format 'stacks
import books' reads) or to CSV.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	db := mustOpenDB(root)
	defer db.Close()

	books, err := db.AllBooks()
	if err != nil {
		exitWithError(ExitError, "reading catalog: %v", err)
	}

	path := args[0]
	switch exportFormat {
	case "jsonl":
		if err := storage.WriteJSONL(path, books); err != nil {
			exitWithError(ExitError, "writing %s: %v", path, err)
		}
	case "csv":
		f, err := os.Create(path)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", path, err)
		}
		w := csv.NewWriter(f)
		w.Write([]string{"id", "isbn", "title", "author", "description", "genres", "publish_year"})
		for _, b := range books {
			w.Write([]string{
				strconv.Itoa(b.ID), b.ISBN, b.Title, b.Author, b.Description,
				strings.Join(b.Genres, ";"), strconv.Itoa(b.PublishYear),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			exitWithError(ExitError, "writing %s: %v", path, err)
		}
		if err := f.Close(); err != nil {
			exitWithError(ExitError, "closing %s: %v", path, err)
		}
	default:
		exitWithError(ExitError, "unknown format %q (want jsonl or csv)", exportFormat)
	}

	if humanOutput {
		outputHuman("Exported %d books to %s\n", len(books), path)
		return nil
	}
	return outputJSON(struct {
		Path  string `json:"path"`
		Books int    `json:"books"`
	}{path, len(books)})
}
