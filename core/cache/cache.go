package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chinba-client/core/config"
	"chinba-client/core/logger"

	"github.com/redis/go-redis/v9"
)

// ICache is the JSON key-value cache used for read-only reference data
type ICache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redis and returns a JSON cache backed by it
func NewRedisCache(cfg config.RedisConfig) (ICache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis cache initialized", "addr", cfg.Addr, "db", cfg.DB)
	return &redisCache{client: client}, nil
}

func (c *redisCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Cache:GetJSON", "error", err, "key", key)
		return false, err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		// Corrupt entry, drop it and report a miss
		logger.Warn("Cache:GetJSON:CorruptEntry", "key", key)
		_ = c.client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (c *redisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.Error("Cache:SetJSON", "error", err, "key", key)
		return err
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Error("Cache:Delete", "error", err, "keys", keys)
		return err
	}
	return nil
}
