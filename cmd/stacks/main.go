// Package main provides the stacks CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	// Best-effort .env loading; a missing file is fine
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stacks",
	Short: "Book catalog with a hybrid recommendation engine",
	Long: `stacks manages a book catalog stored in SQLite and recommends books
by blending content similarity (TF-IDF over book text) with collaborative
filtering (latent-factor matrix factorization over user activity).

All commands output JSON by default for easy integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
