package store

import (
	"fmt"
	"strings"

	"github.com/shardviz/shardviz/internal/config"
	"github.com/shardviz/shardviz/internal/logging"
)

// NewCache creates a Cache instance based on configuration.
// Default is the in-process memory cache; "none" disables caching and
// returns nil.
func NewCache(cfg config.CacheConfig, logger *logging.Logger) (Cache, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "memory":
		return NewMemoryCache(cfg.TTL, cfg.MaxSteps), nil

	case "redis":
		return NewRedisCache(RedisCacheConfig{
			URL:       cfg.URL,
			Password:  cfg.Password,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
			TTL:       cfg.TTL,
		}, logger)

	case "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported cache type: %s (supported: memory, redis, none)", cfg.Type)
	}
}
