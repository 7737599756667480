package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_mood_light/config"
	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/KotFed0t/portfolio_mood_light/utils"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("no cached cycle result")

// SnapshotCache keeps the latest cycle result in redis so other processes can read it.
// Only one value is stored and it expires, so this is not a history.
type SnapshotCache struct {
	redis redis.Cmdable
	key   string
	ttl   time.Duration
}

func NewSnapshotCache(redisClient redis.Cmdable, cfg *config.Config) *SnapshotCache {
	return &SnapshotCache{redis: redisClient, key: cfg.Redis.SnapshotKey, ttl: cfg.Redis.SnapshotTTL}
}

// Report publishes the result of a cycle.
func (c *SnapshotCache) Report(ctx context.Context, result model.CycleResult) error {
	cycleID := utils.GetCycleIDFromCtx(ctx)
	op := "SnapshotCache.Report"

	slog.Debug("start Report", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("key", c.key))

	resultJson, err := json.Marshal(result)
	if err != nil {
		slog.Error("can't marshall cycle result", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("marshal cycle result: %w", err)
	}

	err = c.redis.Set(ctx, c.key, resultJson, c.ttl).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("Report completed", slog.String("cycleID", cycleID), slog.String("op", op))

	return nil
}

func (c *SnapshotCache) Latest(ctx context.Context) (model.CycleResult, error) {
	op := "SnapshotCache.Latest"

	res, err := c.redis.Get(ctx, c.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.CycleResult{}, ErrCacheMiss
		}
		slog.Error("failed on redis.Get", slog.String("op", op), slog.String("err", err.Error()), slog.String("key", c.key))
		return model.CycleResult{}, err
	}

	result := model.CycleResult{}
	err = json.Unmarshal([]byte(res), &result)
	if err != nil {
		slog.Error("can't unmarshall cycle result", slog.String("op", op), slog.String("err", err.Error()))
		return model.CycleResult{}, fmt.Errorf("unmarshal cycle result: %w", err)
	}

	return result, nil
}
