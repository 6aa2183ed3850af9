package qdrant

import (
	"errors"
	"time"
)

// Config represents the configuration for the Qdrant client
type Config struct {
	Host   string // Qdrant host (gRPC)
	Port   int    // gRPC port, 6334 by default
	APIKey string // API key (optional)
	UseTLS bool   // Enable TLS connection

	// Retry settings
	MaxRetries int           // Maximum number of retries for retryable errors
	RetryDelay time.Duration // Delay between retries
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Host:       "localhost",
		Port:       6334,
		MaxRetries: 2,
		RetryDelay: 200 * time.Millisecond,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("qdrant: host is required")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("qdrant: port must be between 1 and 65535")
	}

	if c.MaxRetries < 0 {
		return errors.New("qdrant: max retries must be non-negative")
	}

	if c.RetryDelay < 0 {
		return errors.New("qdrant: retry delay must be non-negative")
	}

	return nil
}
