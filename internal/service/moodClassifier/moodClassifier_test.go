package moodClassifier

import (
	"testing"

	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func snapshot(dayChange, totalReturn string) model.Snapshot {
	snap := model.Snapshot{}
	if dayChange != "" {
		snap.DayChangePct = decimal.NewNullDecimal(decimal.RequireFromString(dayChange))
	}
	if totalReturn != "" {
		snap.TotalReturnPct = decimal.NewNullDecimal(decimal.RequireFromString(totalReturn))
	}
	return snap
}

func TestClassify(t *testing.T) {
	band := decimal.RequireFromString("0.3")

	tests := []struct {
		name   string
		snap   model.Snapshot
		signal model.MoodSignal
		want   model.Mood
	}{
		{name: "above band", snap: snapshot("0.31", ""), signal: model.SignalDayChange, want: model.MoodGain},
		{name: "below band", snap: snapshot("-1.5", ""), signal: model.SignalDayChange, want: model.MoodLoss},
		{name: "inside band", snap: snapshot("0.2", ""), signal: model.SignalDayChange, want: model.MoodFlat},
		{name: "upper edge is flat", snap: snapshot("0.3", ""), signal: model.SignalDayChange, want: model.MoodFlat},
		{name: "lower edge is flat", snap: snapshot("-0.3", ""), signal: model.SignalDayChange, want: model.MoodFlat},
		{name: "undefined signal", snap: snapshot("", "12.8"), signal: model.SignalDayChange, want: model.MoodFlat},
		{name: "total return signal", snap: snapshot("-2", "12.8"), signal: model.SignalTotalReturn, want: model.MoodGain},
		{name: "degraded", snap: model.Snapshot{Degraded: true, DayChangePct: decimal.NewNullDecimal(decimal.NewFromInt(5))}, signal: model.SignalDayChange, want: model.MoodFlat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.snap, tt.signal, band))
		})
	}
}

func TestClassifyIsMonotonicAndDeterministic(t *testing.T) {
	band := decimal.RequireFromString("0.05")
	step := decimal.RequireFromString("0.01")

	prev := model.MoodLoss
	for v := decimal.NewFromInt(-2); v.LessThanOrEqual(decimal.NewFromInt(2)); v = v.Add(step) {
		snap := model.Snapshot{DayChangePct: decimal.NewNullDecimal(v)}
		got := Classify(snap, model.SignalDayChange, band)

		assert.Equal(t, got, Classify(snap, model.SignalDayChange, band), "same input, same mood at %s", v)
		assert.GreaterOrEqual(t, rank(got), rank(prev), "mood went down at %s", v)
		if v.GreaterThan(band) {
			assert.Equal(t, model.MoodGain, got, "at %s", v)
		}
		prev = got
	}
}

func rank(m model.Mood) int {
	switch m {
	case model.MoodLoss:
		return 0
	case model.MoodFlat:
		return 1
	default:
		return 2
	}
}
