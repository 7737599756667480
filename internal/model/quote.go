package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrQuote = errors.New("quote unavailable")

type Quote struct {
	Symbol     string          `json:"symbol"`
	LastPrice  decimal.Decimal `json:"last_price"`
	PriorClose decimal.Decimal `json:"prior_close"`
	Source     string          `json:"source"`
}

// QuoteResult is the per-symbol outcome of one fetch. Err wraps ErrQuote when set.
type QuoteResult struct {
	Quote Quote
	Err   error
}

func (r QuoteResult) OK() bool {
	return r.Err == nil
}

// DayChange returns last/prior - 1 as a fraction. ok is false when the prior close is unusable.
func (q Quote) DayChange() (change decimal.Decimal, ok bool) {
	if !q.PriorClose.IsPositive() {
		return decimal.Zero, false
	}
	return q.LastPrice.Div(q.PriorClose).Sub(decimal.NewFromInt(1)), true
}
