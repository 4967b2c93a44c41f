package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const progressKeyPrefix = "progress:"

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{
		client: client,
	}, nil
}

func (c *RedisCache) SetProgress(ctx context.Context, docID uuid.UUID, p Progress, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, progressKeyPrefix+docID.String(), data, ttl).Err()
}

func (c *RedisCache) GetProgress(ctx context.Context, docID uuid.UUID) (*Progress, error) {
	data, err := c.client.Get(ctx, progressKeyPrefix+docID.String()).Bytes()
	if err == redis.Nil {
		return nil, nil // nothing recorded
	}
	if err != nil {
		return nil, err
	}
	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *RedisCache) ClearProgress(ctx context.Context, docID uuid.UUID) error {
	return c.client.Del(ctx, progressKeyPrefix+docID.String()).Err()
}

// Close closes the cache connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
