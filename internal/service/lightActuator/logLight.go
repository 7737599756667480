package lightActuator

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/KotFed0t/portfolio_mood_light/utils"
)

// LogLight is the dry-run light: it only logs what a real bulb would be told.
type LogLight struct{}

func NewLogLight() *LogLight {
	return &LogLight{}
}

func (l *LogLight) SetColour(ctx context.Context, rgb model.RGB) error {
	slog.Info("light colour", slog.String("cycleID", utils.GetCycleIDFromCtx(ctx)), slog.Any("rgb", rgb))
	return nil
}

func (l *LogLight) SetWhite(ctx context.Context) error {
	slog.Info("light white", slog.String("cycleID", utils.GetCycleIDFromCtx(ctx)))
	return nil
}

func (l *LogLight) TurnOff(ctx context.Context) error {
	slog.Info("light off", slog.String("cycleID", utils.GetCycleIDFromCtx(ctx)))
	return nil
}
