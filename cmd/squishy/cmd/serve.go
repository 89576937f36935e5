/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bbkr/squishyid/pkg/api"
	"github.com/bbkr/squishyid/pkg/config"
	"github.com/bbkr/squishyid/pkg/logging"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the SquishyID REST API server.

The server encodes and decodes with the configured key and keeps a registry
of values under sequential IDs in the data directory.

Examples:
  squishy serve
  squishy serve --port 9000 --bind 0.0.0.0
  squishy serve --config ./squishy.yaml --data-dir /var/lib/squishy`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// Flags override the config file only when given
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runServe(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().StringP("data-dir", "d", "./data", "Data directory for the ID registry")
}

func runServe(ctx context.Context, out, logOut io.Writer, cfg *config.Config) error {
	if container == nil {
		return errors.New("dependency container not initialized")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	c, err := cfg.Codec()
	if err != nil {
		return err
	}

	apiKey := cfg.Security.APIKey
	if apiKey == "" || apiKey == "auto" {
		apiKey, err = config.GenerateSecureKey(32)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "🔑 Generated API key for this run: %s\n", apiKey)
	}

	logger := logging.New(cfg.Logging, logOut)

	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	registry, err := container.GetRegistryFactory().OpenRegistry(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Error("failed to close registry", "error", err)
		}
	}()

	fmt.Fprintf(out, "🚀 Starting SquishyID server on %s:%d\n", cfg.Bind, cfg.Port)
	fmt.Fprintf(out, "📁 Data directory: %s\n", cfg.DataDir)

	starter := container.GetServerFactory().CreateServerStarter()
	return starter.StartServer(ctx, c, registry, api.ServerConfig{
		Port:   cfg.Port,
		Bind:   cfg.Bind,
		APIKey: apiKey,
	}, logger)
}
