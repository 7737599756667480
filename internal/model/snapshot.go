package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Position struct {
	Holding
	Quote        *Quote              `json:"quote,omitempty"`
	Invested     decimal.Decimal     `json:"invested"`
	CurrentValue decimal.NullDecimal `json:"current_value"`
	ProfitLoss   decimal.NullDecimal `json:"profit_loss"`
	ReturnPct    decimal.NullDecimal `json:"return_pct"`
	DayChangePct decimal.NullDecimal `json:"day_change_pct"`
	QuoteErr     string              `json:"quote_error,omitempty"`
}

// Snapshot is the aggregate of one refresh cycle. Percent values are at full precision.
type Snapshot struct {
	ComputedAt        time.Time           `json:"computed_at"`
	Policy            MissingQuotePolicy  `json:"missing_quote_policy"`
	Positions         []Position          `json:"positions"`
	TotalInvested     decimal.Decimal     `json:"total_invested"`
	TotalCurrentValue decimal.Decimal     `json:"total_current_value"`
	UnrealizedPL      decimal.Decimal     `json:"unrealized_pl"`
	TotalReturnPct    decimal.NullDecimal `json:"total_return_pct"`
	DayChangePct      decimal.NullDecimal `json:"day_change_pct"`
	MissingQuotes     []string            `json:"missing_quotes,omitempty"`
	// Degraded marks a snapshot without usable data: no holdings, nothing invested or no quote at all.
	Degraded bool `json:"degraded"`
}

func (s Snapshot) Partial() bool {
	return len(s.MissingQuotes) > 0
}

// Signal returns the metric that drives the mood.
func (s Snapshot) Signal(signal MoodSignal) decimal.NullDecimal {
	if signal == SignalTotalReturn {
		return s.TotalReturnPct
	}
	return s.DayChangePct
}

// CycleResult is what one refresh cycle hands to reporters.
type CycleResult struct {
	CycleID     string    `json:"cycle_id"`
	Snapshot    Snapshot  `json:"snapshot"`
	Mood        Mood      `json:"mood"`
	PrevMood    *Mood     `json:"prev_mood,omitempty"`
	Actuated    bool      `json:"actuated"`
	ActuatorErr string    `json:"actuator_error,omitempty"`
	FinishedAt  time.Time `json:"finished_at"`
}

func (r CycleResult) MoodChanged() bool {
	return r.PrevMood == nil || *r.PrevMood != r.Mood
}
