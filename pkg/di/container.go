// Package di provides dependency injection container
package di

import (
	"github.com/bbkr/squishyid/pkg/api" //nolint:depguard
)

// Container holds all the dependencies for the application
type Container struct {
	registryFactory api.RegistryFactory
	serverFactory   api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		registryFactory: api.NewRegistryFactory(),
		serverFactory:   api.NewServerFactory(),
	}
}

// GetRegistryFactory returns the registry factory
func (c *Container) GetRegistryFactory() api.RegistryFactory {
	return c.registryFactory
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetRegistryFactory allows overriding the registry factory (for testing)
func (c *Container) SetRegistryFactory(factory api.RegistryFactory) {
	c.registryFactory = factory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
