// Package report holds the presentation helpers shared by every cycle reporter.
package report

import (
	"github.com/shopspring/decimal"
)

const Placeholder = "—"

// Money renders a currency amount with two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Pct renders a percentage with two decimals, or a dash when it is undefined.
func Pct(d decimal.NullDecimal) string {
	if !d.Valid {
		return Placeholder
	}
	return d.Decimal.StringFixed(2) + "%"
}

func NullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return Placeholder
	}
	return Money(d.Decimal)
}
