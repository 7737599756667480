// Package valuator turns holdings and the quotes of one cycle into a portfolio snapshot.
// Everything here is pure: no I/O, deterministic for the same input.
package valuator

import (
	"time"

	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Compute values the portfolio. quotes is keyed by holding symbol; a symbol without an entry,
// with an error or with a non-positive last price counts as a missing quote.
//
// Under model.PolicyCountInvested an unpriced holding keeps its invested capital in the totals and adds
// nothing to the current value. Under model.PolicyExclude it is left out of both sides.
func Compute(holdings []model.Holding, quotes map[string]model.QuoteResult, policy model.MissingQuotePolicy, now time.Time) model.Snapshot {
	snap := model.Snapshot{
		ComputedAt: now,
		Policy:     policy,
		Positions:  make([]model.Position, 0, len(holdings)),
	}

	var (
		weightedChange decimal.Decimal
		weightBase     decimal.Decimal
		priced         int
	)

	for _, h := range holdings {
		pos := model.Position{Holding: h, Invested: h.Invested()}

		quote, errMsg := usableQuote(quotes, h.Symbol)
		if quote == nil {
			pos.QuoteErr = errMsg
			snap.MissingQuotes = append(snap.MissingQuotes, h.Symbol)
			if policy != model.PolicyExclude {
				snap.TotalInvested = snap.TotalInvested.Add(pos.Invested)
			}
			snap.Positions = append(snap.Positions, pos)
			continue
		}

		priced++
		pos.Quote = quote

		value := h.Quantity.Mul(quote.LastPrice)
		pl := value.Sub(pos.Invested)

		pos.CurrentValue = decimal.NewNullDecimal(value)
		pos.ProfitLoss = decimal.NewNullDecimal(pl)
		if pos.Invested.IsPositive() {
			pos.ReturnPct = decimal.NewNullDecimal(pl.Div(pos.Invested).Mul(hundred))
		}

		snap.TotalInvested = snap.TotalInvested.Add(pos.Invested)
		snap.TotalCurrentValue = snap.TotalCurrentValue.Add(value)

		if change, ok := quote.DayChange(); ok {
			pos.DayChangePct = decimal.NewNullDecimal(change.Mul(hundred))
			weightedChange = weightedChange.Add(value.Mul(change))
			weightBase = weightBase.Add(value)
		}

		snap.Positions = append(snap.Positions, pos)
	}

	snap.UnrealizedPL = snap.TotalCurrentValue.Sub(snap.TotalInvested)

	if priced > 0 && snap.TotalInvested.IsPositive() {
		snap.TotalReturnPct = decimal.NewNullDecimal(snap.UnrealizedPL.Div(snap.TotalInvested).Mul(hundred))
	}

	if weightBase.IsPositive() {
		snap.DayChangePct = decimal.NewNullDecimal(weightedChange.Div(weightBase).Mul(hundred))
	}

	snap.Degraded = len(holdings) == 0 || priced == 0 || !snap.TotalInvested.IsPositive()

	return snap
}

func usableQuote(quotes map[string]model.QuoteResult, symbol string) (*model.Quote, string) {
	res, ok := quotes[symbol]
	switch {
	case !ok:
		return nil, "no quote returned"
	case res.Err != nil:
		return nil, res.Err.Error()
	case !res.Quote.LastPrice.IsPositive():
		return nil, "non-positive last price"
	}

	q := res.Quote
	return &q, ""
}
