package main

import (
	"os"

	"github.com/dunn/stacks/internal/config"
	"github.com/dunn/stacks/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a stacks repository in the current directory",
	Long: `Create a .stacks directory with an empty catalog database and a
default configuration file. Safe to run in a directory that already
contains a repository; existing data is untouched.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if err := os.MkdirAll(config.StacksPath(cwd), 0755); err != nil {
		exitWithError(ExitError, "creating repository directory: %v", err)
	}

	if _, err := os.Stat(config.ConfigPath(cwd)); os.IsNotExist(err) {
		cfg := &config.Config{}
		if err := cfg.Save(cwd); err != nil {
			exitWithError(ExitError, "writing config: %v", err)
		}
	}

	// Opening creates the schema
	db, err := storage.OpenDB(config.DBPath(cwd))
	if err != nil {
		exitWithError(ExitError, "creating database: %v", err)
	}
	db.Close()

	if humanOutput {
		outputHuman("Initialized stacks repository in %s\n", config.StacksPath(cwd))
		return nil
	}
	return outputJSON(StatusResponse{Status: "initialized", Path: config.StacksPath(cwd)})
}
