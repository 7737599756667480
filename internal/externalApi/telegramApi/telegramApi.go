package telegramApi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_mood_light/config"
	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/KotFed0t/portfolio_mood_light/internal/report"
	"github.com/KotFed0t/portfolio_mood_light/utils"
	tele "gopkg.in/telebot.v4"
)

type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramApi posts a message to one chat whenever the portfolio mood changes.
type TelegramApi struct {
	bot    sender
	chatID tele.ChatID
}

func New(cfg *config.Config) *TelegramApi {
	settings := tele.Settings{
		Token:   cfg.Telegram.Token,
		Offline: true,
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TelegramApi{bot: b, chatID: tele.ChatID(cfg.Telegram.ChatID)}
}

func (a *TelegramApi) Report(ctx context.Context, result model.CycleResult) error {
	if !result.MoodChanged() {
		return nil
	}

	cycleID := utils.GetCycleIDFromCtx(ctx)
	op := "TelegramApi.Report"

	slog.Debug("Report start", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("mood", result.Mood.String()))

	_, err := a.bot.Send(a.chatID, FormatMoodChange(result))
	if err != nil {
		slog.Error("failed on bot.Send", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("Report completed", slog.String("cycleID", cycleID), slog.String("op", op))

	return nil
}

var moodEmoji = map[model.Mood]string{
	model.MoodGain: "🟢",
	model.MoodLoss: "🔴",
	model.MoodFlat: "⚪",
}

func FormatMoodChange(result model.CycleResult) string {
	snap := result.Snapshot

	text := fmt.Sprintf("%s Portfolio mood: %s\nInvested: %s\nCurrent value: %s\nUnrealized P/L: %s\nTotal return: %s\n1D change: %s",
		moodEmoji[result.Mood],
		result.Mood,
		report.Money(snap.TotalInvested),
		report.Money(snap.TotalCurrentValue),
		report.Money(snap.UnrealizedPL),
		report.Pct(snap.TotalReturnPct),
		report.Pct(snap.DayChangePct),
	)

	if snap.Partial() {
		text += fmt.Sprintf("\nNo quote for: %v", snap.MissingQuotes)
	}

	return text
}
