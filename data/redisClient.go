package data

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_mood_light/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the configured redis and pings it once.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		slog.Error("Error while connecting Redis", slog.String("error", err.Error()))
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	slog.Info("Redis connected", slog.String("pong", pong))

	return rdb, nil
}
