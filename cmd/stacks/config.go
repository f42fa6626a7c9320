package main

import (
	"strconv"

	"github.com/dunn/stacks/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Get and set repository configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the repository configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigGet,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		outputHuman("model_name: %s\ncontent_weight: %g\ncollab_weight: %g\n",
			cfg.ModelName, cfg.ContentWeight, cfg.CollabWeight)
		return nil
	}
	return outputJSON(cfg)
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a repository configuration value. Keys:

  model_name      Blob key for the hybrid model
  content_weight  Default hybrid content weight
  collab_weight   Default hybrid collaborative weight`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	key, value := args[0], args[1]
	switch key {
	case "model_name":
		cfg.ModelName = value
	case "content_weight", "collab_weight":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			exitWithError(ExitError, "invalid number %q", value)
		}
		if key == "content_weight" {
			cfg.ContentWeight = f
		} else {
			cfg.CollabWeight = f
		}
		if err := cfg.ValidateWeights(); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	default:
		exitWithError(ExitError, "unknown key %q", key)
	}

	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		outputHuman("set %s = %s\n", key, value)
		return nil
	}
	return outputJSON(struct {
		Status string `json:"status"`
		Key    string `json:"key"`
		Value  string `json:"value"`
	}{"updated", key, value})
}
