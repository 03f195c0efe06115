package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
}

// StoreConfig represents snapshot store configuration
type StoreConfig struct {
	// DataRoot is the directory holding simulation runs.
	// Layout: <data_root>/<test_name>/<run_folder>/<t>.json
	DataRoot string `mapstructure:"data_root"`
}

// CacheConfig represents snapshot cache configuration
type CacheConfig struct {
	Type      string        `mapstructure:"type"`       // Cache type: memory (default), redis, none
	URL       string        `mapstructure:"url"`        // Redis URL (e.g., redis://localhost:6379)
	Password  string        `mapstructure:"password"`   // Optional Redis authentication
	RedisDB   int           `mapstructure:"redis_db"`   // Redis database number (default: 0)
	KeyPrefix string        `mapstructure:"key_prefix"` // Redis key prefix (default: "shardviz")
	TTL       time.Duration `mapstructure:"ttl"`        // Entry lifetime; snapshots are immutable so this only bounds memory
	MaxSteps  int           `mapstructure:"max_steps"`  // Max cached steps in the memory backend (0 = unbounded)
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	return nil
}

// Validate validates store configuration
func (c *StoreConfig) Validate() error {
	if c.DataRoot == "" {
		return fmt.Errorf("data_root is required")
	}

	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	switch c.Type {
	case "", "memory", "redis", "none":
	default:
		return fmt.Errorf("cache.type must be one of: memory, redis, none")
	}

	if c.Type == "redis" && c.URL == "" {
		return fmt.Errorf("cache.url is required for the redis backend")
	}

	if c.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
