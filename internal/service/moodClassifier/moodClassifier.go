package moodClassifier

import (
	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/shopspring/decimal"
)

// Classify maps the chosen snapshot signal onto a mood. Values inside [-flatBandPct, +flatBandPct]
// are flat, and so is any degraded snapshot or undefined signal.
func Classify(snap model.Snapshot, signal model.MoodSignal, flatBandPct decimal.Decimal) model.Mood {
	if snap.Degraded {
		return model.MoodFlat
	}

	value := snap.Signal(signal)
	if !value.Valid {
		return model.MoodFlat
	}

	band := flatBandPct.Abs()

	switch {
	case value.Decimal.GreaterThan(band):
		return model.MoodGain
	case value.Decimal.LessThan(band.Neg()):
		return model.MoodLoss
	default:
		return model.MoodFlat
	}
}
