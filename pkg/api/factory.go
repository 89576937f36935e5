// Package api provides factory implementations for dependency injection
package api

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/bbkr/squishyid/pkg/codec"
	"github.com/bbkr/squishyid/pkg/registry"
)

// RegistryDir is the directory under the data dir holding the registry
const RegistryDir = "registry"

// DefaultRegistryFactory is the default implementation of RegistryFactory
type DefaultRegistryFactory struct{}

// NewRegistryFactory creates a new registry factory
func NewRegistryFactory() RegistryFactory {
	return &DefaultRegistryFactory{}
}

// OpenRegistry opens the pebble-backed registry under dataDir
func (f *DefaultRegistryFactory) OpenRegistry(dataDir string, logger *slog.Logger) (RegistryService, error) {
	r, err := registry.Open(filepath.Join(dataDir, RegistryDir), registry.Options{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}
	return r, nil
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(
	ctx context.Context,
	c *codec.SquishyID,
	registry IRegistry,
	config ServerConfig,
	logger *slog.Logger,
) error {
	return StartServer(ctx, c, registry, config, logger)
}
