package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edupode/mysterybox/internal/config"

	"github.com/redis/go-redis/v9"
)

// キーが無いときGetが返す
var ErrMiss = errors.New("cache miss")

// RedisClient は go-redis の薄いラッパーです。
type RedisClient struct {
	client *redis.Client
}

// 接続してPingが通ったものだけ返す
func NewRedisClient(cfg config.RedisConfig) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisClient{client: client}, nil
}

func (r *RedisClient) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// redis.NilはErrMissに変換
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
