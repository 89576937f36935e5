/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/bbkr/squishyid/pkg/codec"
	"github.com/bbkr/squishyid/pkg/config"
	"github.com/bbkr/squishyid/pkg/di"
	"github.com/spf13/cobra"
)

var container *di.Container

// SetContainer injects the dependency container used by commands
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "squishy",
	Short: "SquishyID - shorten numeric IDs",
	Long: `SquishyID encodes numbers into short strings built from the characters
of a secret key, and decodes them back.

Example:
  squishy keygen > key.txt
  squishy encode --key "$(cat key.txt)" 48888851145`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default: ~/.config/squishy/config.yaml)")
	rootCmd.PersistentFlags().StringP("key", "k", "", "Key to encode with, overrides the config file")
}

// configPath returns the --config path and whether it was given explicitly
func configPath(cmd *cobra.Command) (string, bool) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.GetDefaultConfigPath(), false
	}
	return path, true
}

// loadConfig reads the config file. A missing default config yields the
// defaults; a missing explicit one is an error. --key overrides the file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, explicit := configPath(cmd)

	var cfg *config.Config
	switch {
	case config.ConfigExists(path):
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	case explicit:
		return nil, fmt.Errorf("config file does not exist: %s", path)
	default:
		cfg = config.DefaultConfig()
	}

	if key, _ := cmd.Flags().GetString("key"); key != "" {
		cfg.Key = key
	}
	return cfg, nil
}

// loadCodec builds the codec from --key or the config file
func loadCodec(cmd *cobra.Command) (*codec.SquishyID, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Key == "" {
		return nil, errors.New("no key configured: pass --key or run 'squishy init'")
	}
	c, err := cfg.Codec()
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return c, nil
}
