package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/redis/go-redis/v9"
	"github.com/shardviz/shardviz/internal/logging"
	"github.com/shardviz/shardviz/internal/snapshot"
)

// RedisCacheConfig represents Redis cache configuration
type RedisCacheConfig struct {
	URL       string        // Redis URL (e.g., redis://localhost:6379)
	Password  string        // Optional password
	DB        int           // Database number (default: 0)
	KeyPrefix string        // Key prefix (default: "shardviz")
	TTL       time.Duration // Entry lifetime
}

// RedisCache shares loaded steps between viewer instances through Redis.
// Values are snappy-compressed JSON in the upstream record format, so a hit
// goes back through full schema validation before being served.
type RedisCache struct {
	client *redis.Client
	config RedisCacheConfig
	logger *logging.Logger
}

// NewRedisCache creates a Redis-backed snapshot cache.
func NewRedisCache(cfg RedisCacheConfig, logger *logging.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		// Fallback to simple options
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "shardviz"
	}

	return &RedisCache{client: client, config: cfg, logger: logger}, nil
}

func (c *RedisCache) redisKey(key string) string {
	return fmt.Sprintf("%s:step:%s", c.config.KeyPrefix, key)
}

// Get retrieves and revalidates a cached step. Backend failures and
// corrupted values degrade to a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*snapshot.SimulationStep, bool) {
	raw, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Redis cache get failed", "key", key, "error", err)
		}
		return nil, false
	}

	data, err := snappy.Decode(nil, raw)
	if err != nil {
		c.logger.Warn("Dropping corrupted cache entry", "key", key, "error", err)
		c.client.Del(ctx, c.redisKey(key))
		return nil, false
	}

	step, err := snapshot.DecodeStep(data)
	if err != nil {
		c.logger.Warn("Dropping invalid cache entry", "key", key, "error", err)
		c.client.Del(ctx, c.redisKey(key))
		return nil, false
	}

	return step, true
}

// Set stores a step. Failures are logged, not propagated: the cache is an
// optimization over an authoritative file store.
func (c *RedisCache) Set(ctx context.Context, key string, step *snapshot.SimulationStep) {
	data, err := json.Marshal(step)
	if err != nil {
		c.logger.Warn("Failed to encode step for cache", "key", key, "error", err)
		return
	}

	compressed := snappy.Encode(nil, data)
	if err := c.client.Set(ctx, c.redisKey(key), compressed, c.config.TTL).Err(); err != nil {
		c.logger.Warn("Redis cache set failed", "key", key, "error", err)
	}
}

// Close releases the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
