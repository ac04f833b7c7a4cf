package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wayfarer/backend/internal/domain/place"
)

const placeDetailsKeyPrefix = "wayfarer:place:details:"

// RedisPlaceDetailsCache implements PlaceDetailsCache on Redis string keys
// holding JSON-encoded details. Shared by every instance.
type RedisPlaceDetailsCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

var _ PlaceDetailsCache = (*RedisPlaceDetailsCache)(nil)

// NewRedisPlaceDetailsCache creates a cache on an existing Redis client
func NewRedisPlaceDetailsCache(client redis.UniversalClient) *RedisPlaceDetailsCache {
	return &RedisPlaceDetailsCache{client: client, keyPrefix: placeDetailsKeyPrefix}
}

func (c *RedisPlaceDetailsCache) key(placeID string) string {
	return c.keyPrefix + placeID
}

// Get returns cached details. Undecodable entries are dropped and reported as a miss.
func (c *RedisPlaceDetailsCache) Get(ctx context.Context, placeID string) (*place.Details, bool, error) {
	raw, err := c.client.Get(ctx, c.key(placeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read place details from cache: %w", err)
	}

	var details place.Details
	if err := json.Unmarshal(raw, &details); err != nil {
		_ = c.client.Del(ctx, c.key(placeID)).Err()
		return nil, false, nil
	}
	return &details, true, nil
}

// Set stores details for ttl
func (c *RedisPlaceDetailsCache) Set(ctx context.Context, details *place.Details, ttl time.Duration) error {
	if details == nil || details.PlaceID == "" {
		return nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode place details: %w", err)
	}
	if err := c.client.Set(ctx, c.key(details.PlaceID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write place details to cache: %w", err)
	}
	return nil
}

// Delete evicts placeID
func (c *RedisPlaceDetailsCache) Delete(ctx context.Context, placeID string) error {
	if err := c.client.Del(ctx, c.key(placeID)).Err(); err != nil {
		return fmt.Errorf("failed to evict place details: %w", err)
	}
	return nil
}
