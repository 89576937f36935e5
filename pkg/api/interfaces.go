// Package api provides interfaces for dependency injection
package api

import (
	"context"
	"log/slog"

	"github.com/bbkr/squishyid/pkg/codec"
)

// RegistryService is a registry that owns resources and must be closed
type RegistryService interface {
	IRegistry

	// Close releases the underlying store
	Close() error
}

// RegistryFactory opens registries
type RegistryFactory interface {
	// OpenRegistry opens the registry kept under dataDir
	OpenRegistry(dataDir string, logger *slog.Logger) (RegistryService, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer starts the API server and blocks until ctx is cancelled
	StartServer(ctx context.Context, c *codec.SquishyID, registry IRegistry, config ServerConfig, logger *slog.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
