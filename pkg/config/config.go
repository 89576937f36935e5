/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/bbkr/squishyid/pkg/codec"
	"gopkg.in/yaml.v3"
)

// Config represents the squishy configuration
type Config struct {
	Key      string   `yaml:"key"`
	DataDir  string   `yaml:"data_dir"`
	Port     int      `yaml:"port"`
	Bind     string   `yaml:"bind"`
	Security Security `yaml:"security"`
	Logging  Logging  `yaml:"logging"`
}

// Security contains security-related configuration
type Security struct {
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Character sets accepted by GenerateKey
const (
	CharsetAlnum  = "alnum"
	CharsetLower  = "lower"
	CharsetUpper  = "upper"
	CharsetDigits = "digits"
	CharsetEmoji  = "emoji"
)

var charsets = map[string]string{
	CharsetAlnum:  "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
	CharsetLower:  "abcdefghijklmnopqrstuvwxyz",
	CharsetUpper:  "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
	CharsetDigits: "0123456789",
	CharsetEmoji:  emojiRange('\U0001F600', '\U0001F637'),
}

func emojiRange(from, to rune) string {
	var b strings.Builder
	for r := from; r <= to; r++ {
		b.WriteRune(r)
	}
	return b.String()
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Key:     "",
		DataDir: "./data",
		Port:    8080,
		Bind:    "127.0.0.1",
		Security: Security{
			APIKey: "auto",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The key is the only thing standing between IDs and their encodings
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration can be used to run the server
func (c *Config) Validate() error {
	if _, err := codec.New(c.Key); err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	return nil
}

// Codec builds the codec for the configured key
func (c *Config) Codec() (*codec.SquishyID, error) {
	return codec.New(c.Key)
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// Charsets returns the names accepted by GenerateKey
func Charsets() []string {
	return []string{CharsetAlnum, CharsetLower, CharsetUpper, CharsetDigits, CharsetEmoji}
}

// GenerateKey returns a random permutation of the named charset
func GenerateKey(charset string) (string, error) {
	chars, ok := charsets[charset]
	if !ok {
		return "", fmt.Errorf("unknown charset %q (want one of %s)", charset, strings.Join(Charsets(), ", "))
	}
	return ShuffleKey(chars)
}

// ShuffleKey returns a random permutation of the characters of chars. The
// result is checked to be a usable key.
func ShuffleKey(chars string) (string, error) {
	s, err := codec.New(chars)
	if err != nil {
		return "", fmt.Errorf("invalid characters: %w", err)
	}
	symbols := s.Symbols()

	// Fisher-Yates
	for i := len(symbols) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("failed to shuffle key: %w", err)
		}
		j := n.Int64()
		symbols[i], symbols[j] = symbols[j], symbols[i]
	}

	return strings.Join(symbols, ""), nil
}

// BootstrapConfig creates a new configuration with a generated key and API key
func BootstrapConfig(configPath string, dataDir string, charset string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}
	if charset == "" {
		charset = CharsetAlnum
	}

	key, err := GenerateKey(charset)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	config.Key = key

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Security.APIKey = apiKey

	// Save the configuration
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	// Use OS-specific default locations
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./squishy.yaml"
	}

	// For Linux/macOS, use ~/.config/squishy/config.yaml
	configDir := filepath.Join(homeDir, ".config", "squishy")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
