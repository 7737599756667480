package lightActuator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_mood_light/config"
	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/KotFed0t/portfolio_mood_light/utils"
	"github.com/cenkalti/backoff/v4"
)

var ErrActuator = errors.New("light actuator failed")

type Light interface {
	SetColour(ctx context.Context, rgb model.RGB) error
	SetWhite(ctx context.Context) error
	TurnOff(ctx context.Context) error
}

// Actuator shows a mood on the light. Every call issues the command again, so repeating a mood is harmless.
type Actuator struct {
	light      Light
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

func New(cfg *config.Config, light Light) *Actuator {
	return &Actuator{
		light:      light,
		maxRetries: cfg.Light.MaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxElapsedTime = 10 * time.Second
			return b
		},
	}
}

func (a *Actuator) SetMood(ctx context.Context, mood model.Mood) error {
	cycleID := utils.GetCycleIDFromCtx(ctx)
	op := "Actuator.SetMood"

	slog.Debug("SetMood start", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("mood", mood.String()))

	rgb, colour := mood.Color()

	err := a.retry(ctx, func() error {
		if colour {
			return a.light.SetColour(ctx, rgb)
		}
		return a.light.SetWhite(ctx)
	})
	if err != nil {
		slog.Error("SetMood failed", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("%w: set mood %s: %w", ErrActuator, mood, err)
	}

	slog.Info("light set", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("mood", mood.String()))

	return nil
}

func (a *Actuator) TurnOff(ctx context.Context) error {
	err := a.retry(ctx, func() error {
		return a.light.TurnOff(ctx)
	})
	if err != nil {
		slog.Error("TurnOff failed", slog.String("op", "Actuator.TurnOff"), slog.String("err", err.Error()))
		return fmt.Errorf("%w: turn off: %w", ErrActuator, err)
	}

	slog.Info("light turned off")

	return nil
}

func (a *Actuator) retry(ctx context.Context, fn func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(a.newBackOff(), a.maxRetries), ctx)
	return backoff.Retry(fn, b)
}
