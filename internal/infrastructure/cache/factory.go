package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wayfarer/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection.
// It returns a nil client and no error when Redis is not configured.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// FactoryOption configures NewPlaceDetailsCache
type FactoryOption func(*factory)

type factory struct {
	logger *zap.Logger
}

// WithLogger sets the logger used to report the chosen backend
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *factory) {
		f.logger = logger
	}
}

// NewPlaceDetailsCache picks the Redis cache when a client is available and
// falls back to the in-memory cache otherwise. The returned close function
// releases the in-memory cache's cleanup goroutine; the Redis client is owned by the caller.
func NewPlaceDetailsCache(client *redis.Client, opts ...FactoryOption) (PlaceDetailsCache, func() error) {
	f := &factory{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}

	if client != nil {
		f.logger.Info("using Redis place details cache")
		return NewRedisPlaceDetailsCache(client), func() error { return nil }
	}

	f.logger.Warn("Redis not configured, falling back to in-memory place details cache. " +
		"Cached details are not shared across instances.")
	mem := NewInMemoryPlaceDetailsCache()
	return mem, mem.Close
}
