package api

import (
	"time"

	"github.com/bbkr/squishyid/pkg/registry"
	"github.com/segmentio/ksuid"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CodecResponse is returned by the encode and decode endpoints
type CodecResponse struct {
	Value   uint64 `json:"value"`
	Encoded string `json:"encoded"`
}

// CreateIDRequest represents a registry entry creation request
type CreateIDRequest struct {
	Value string `json:"value"`
}

// IDResponse is a registry entry with its ID squished
type IDResponse struct {
	ID        string    `json:"id"`
	Ref       string    `json:"ref,omitempty"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port         int
	Bind         string
	APIKey       string
	MaxValueSize int64 // Largest accepted registry value in bytes
}

// IRegistry defines the registry operations used by the API
type IRegistry interface {
	Create(value string) (*registry.Entry, error)
	Read(id uint64) (*registry.Entry, error)
	Delete(id uint64, ref ksuid.KSUID) error
	Count() (int, error)
	NextID() (uint64, error)
}
