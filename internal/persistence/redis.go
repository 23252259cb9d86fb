package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/bookswap-service/internal/config"
)

// Redis wraps the go-redis client. It is used as a best-effort cache for
// marketplace search pages; the service stays functional when Redis is
// unreachable.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// CacheGet returns the cached payload for key, if present.
func (r *Redis) CacheGet(ctx context.Context, key string) ([]byte, bool) {
	if r == nil || r.Client == nil {
		return nil, false
	}
	val, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// CacheSet stores a payload under key with a TTL. Errors are ignored;
// caching is best-effort.
func (r *Redis) CacheSet(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if r == nil || r.Client == nil {
		return
	}
	_ = r.Client.Set(ctx, key, val, ttl).Err()
}

// Bump increments a generation counter, used to invalidate derived cache
// keys. Returns 0 when Redis is unavailable.
func (r *Redis) Bump(ctx context.Context, key string) int64 {
	if r == nil || r.Client == nil {
		return 0
	}
	n, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0
	}
	return n
}

// Generation reads a generation counter without modifying it.
func (r *Redis) Generation(ctx context.Context, key string) int64 {
	if r == nil || r.Client == nil {
		return 0
	}
	n, err := r.Client.Get(ctx, key).Int64()
	if err != nil {
		return 0
	}
	return n
}
