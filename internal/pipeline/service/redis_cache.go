// Package service provides the Redis-backed cache for active pipeline lookups.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
)

const activeKeyPrefix = "relay:pipelines:active:"

// RedisActivePipelineCache caches the active pipelines of each source as a
// JSON document with a TTL.
type RedisActivePipelineCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisActivePipelineCache creates a cache whose entries expire after ttl.
func NewRedisActivePipelineCache(client *redis.Client, ttl time.Duration) *RedisActivePipelineCache {
	return &RedisActivePipelineCache{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func activeKey(sourceID uuid.UUID) string {
	return activeKeyPrefix + sourceID.String()
}

// Get returns the cached pipelines of a source.
func (c *RedisActivePipelineCache) Get(
	ctx context.Context,
	sourceID uuid.UUID,
) ([]*pipelineDomain.Pipeline, bool, error) {
	data, err := c.client.Get(ctx, activeKey(sourceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get active pipelines: %w", err)
	}

	var pipelines []*pipelineDomain.Pipeline
	if err := json.Unmarshal(data, &pipelines); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal active pipelines: %w", err)
	}
	return pipelines, true, nil
}

// Set stores the active pipelines of a source. An empty list is cached too.
func (c *RedisActivePipelineCache) Set(
	ctx context.Context,
	sourceID uuid.UUID,
	pipelines []*pipelineDomain.Pipeline,
) error {
	if pipelines == nil {
		pipelines = []*pipelineDomain.Pipeline{}
	}
	data, err := json.Marshal(pipelines)
	if err != nil {
		return fmt.Errorf("failed to marshal active pipelines: %w", err)
	}
	if err := c.client.Set(ctx, activeKey(sourceID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set active pipelines: %w", err)
	}
	return nil
}

// Invalidate removes the cached entry of a source.
func (c *RedisActivePipelineCache) Invalidate(ctx context.Context, sourceID uuid.UUID) error {
	if err := c.client.Del(ctx, activeKey(sourceID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate active pipelines: %w", err)
	}
	return nil
}
