package kv

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"

	"ai-chat-client/internal/config"
	"ai-chat-client/internal/domain"
	"ai-chat-client/internal/domain/ports/storage"
)

var _ storage.KeyValue = (*Redis)(nil)

// Redis is a KeyValue backend for deployments that already run Redis.
// Snapshots are durable state, so entries carry no TTL.
type Redis struct {
	cli *redis.Client
}

func NewRedis(ctx context.Context, cfg *config.RedisConfig) (*Redis, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Redis{cli: c}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.cli.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	return v, err
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.cli.Set(ctx, key, value, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.cli.Del(ctx, key).Err()
}

func (r *Redis) Close() error { return r.cli.Close() }
