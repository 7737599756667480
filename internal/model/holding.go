package model

import "github.com/shopspring/decimal"

// Holding is one owned position. Quantity may be fractional.
type Holding struct {
	Symbol    string          `json:"symbol"`
	Quantity  decimal.Decimal `json:"qty"`
	CostBasis decimal.Decimal `json:"buy_price"`
}

func (h Holding) Invested() decimal.Decimal {
	return h.Quantity.Mul(h.CostBasis)
}
