package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/anurag9179/smartcashbook.client/internal/config"
)

// RedisStore keeps the token under a single Redis key, for deployments
// running several front-end instances behind one session.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis using the provided configuration.
func NewRedisStore(cfg config.RedisConfig, key string, logger *zap.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &RedisStore{client: client, key: key}
}

// Load reads the token key; a missing key means logged out.
func (rs *RedisStore) Load(ctx context.Context) (string, error) {
	val, err := rs.client.Get(ctx, rs.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Save writes the token with no TTL; expiry lives inside the token itself.
func (rs *RedisStore) Save(ctx context.Context, tok string) error {
	return rs.client.Set(ctx, rs.key, tok, 0).Err()
}

// Clear deletes the token key.
func (rs *RedisStore) Clear(ctx context.Context) error {
	return rs.client.Del(ctx, rs.key).Err()
}

// Close releases the underlying client.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
