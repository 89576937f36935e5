/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/bbkr/squishyid/pkg/config"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration with a generated key",
	Long: `Create a configuration file with a freshly generated key and API key.

This command will:
- Generate a random key from the chosen character set
- Generate an API key for the REST API
- Create the data directory
- Write the configuration file readable only by the current user

Examples:
  squishy init
  squishy init --charset emoji --data-dir ./data
  squishy init --config ./squishy.yaml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		charset, _ := cmd.Flags().GetString("charset")
		force, _ := cmd.Flags().GetBool("force")
		path, _ := configPath(cmd)

		return runInit(cmd.OutOrStdout(), path, dataDir, charset, force)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("data-dir", "./data", "Data directory for the ID registry")
	initCmd.Flags().String("charset", config.CharsetAlnum, "Character set for the generated key")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}

func runInit(out io.Writer, configPath, dataDir, charset string, force bool) error {
	if config.ConfigExists(configPath) && !force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", configPath)
	}

	cfg, err := config.BootstrapConfig(configPath, dataDir, charset)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	fmt.Fprintf(out, "✅ Configuration created at %s\n", configPath)
	fmt.Fprintf(out, "Key: %s\n", cfg.Key)
	fmt.Fprintf(out, "API key: %s\n", cfg.Security.APIKey)
	fmt.Fprintf(out, "Data directory: %s\n", cfg.DataDir)
	fmt.Fprintf(out, "\n⚠️  Changing the key changes every encoded ID. Keep %s safe.\n", configPath)
	return nil
}
