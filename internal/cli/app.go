package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/KotFed0t/portfolio_mood_light/config"
	"github.com/KotFed0t/portfolio_mood_light/data"
	"github.com/KotFed0t/portfolio_mood_light/data/cache"
	"github.com/KotFed0t/portfolio_mood_light/data/repository"
	"github.com/KotFed0t/portfolio_mood_light/internal/externalApi/financeApi"
	"github.com/KotFed0t/portfolio_mood_light/internal/externalApi/telegramApi"
	"github.com/KotFed0t/portfolio_mood_light/internal/externalApi/tuyaApi"
	"github.com/KotFed0t/portfolio_mood_light/internal/externalApi/yahooApi"
	"github.com/KotFed0t/portfolio_mood_light/internal/report/consoleReport"
	"github.com/KotFed0t/portfolio_mood_light/internal/service/lightActuator"
	"github.com/KotFed0t/portfolio_mood_light/internal/service/moodLightService"
	"github.com/KotFed0t/portfolio_mood_light/internal/service/quoteService"
	"github.com/KotFed0t/portfolio_mood_light/internal/transport/status"
	"github.com/redis/go-redis/v9"
)

// app is the wired process: holdings loaded, collaborators built, reporters attached.
type app struct {
	service      *moodLightService.MoodLightService
	statusServer *status.Server
	redis        *redis.Client
}

func newLight(cfg *config.Config) lightActuator.Light {
	if cfg.Light.Driver == "tuya" {
		return tuyaApi.New(cfg)
	}
	return lightActuator.NewLogLight()
}

// appOptions narrows what a command wires. The zero value wires everything the config enables.
type appOptions struct {
	// consoleOnly drops the redis, status and telegram reporters.
	consoleOnly bool
	// quotes replaces the Yahoo backed quote service.
	quotes moodLightService.QuoteService
}

func newApp(ctx context.Context, cfg *config.Config, out io.Writer, opts appOptions) (*app, error) {
	holdings, err := repository.NewHoldingsFile(cfg).Load(ctx)
	if err != nil {
		return nil, err
	}

	a := &app{}

	reporters := []moodLightService.Reporter{consoleReport.New(out)}

	if cfg.Redis.Host != "" && !opts.consoleOnly {
		a.redis, err = data.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		reporters = append(reporters, cache.NewSnapshotCache(a.redis, cfg))
	}

	if cfg.Status.Addr != "" && !opts.consoleOnly {
		board := status.NewBoard()
		a.statusServer = status.NewServer(cfg, board)
		reporters = append(reporters, board)
	}

	if cfg.Telegram.Token != "" && !opts.consoleOnly {
		reporters = append(reporters, telegramApi.New(cfg))
	}

	quotes := opts.quotes
	if quotes == nil {
		quotes = quoteService.New(cfg, financeApi.New(), yahooApi.New(cfg))
	}
	actuator := lightActuator.New(cfg, newLight(cfg))

	a.service = moodLightService.New(cfg, holdings, quotes, actuator, reporters...)

	slog.Info("portfolio loaded", slog.Int("holdings", len(holdings)), slog.String("light", cfg.Light.Driver))

	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Error("closing redis", slog.String("err", err.Error()))
		}
	}
}
