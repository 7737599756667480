package valuator

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func holding(symbol, qty, cost string) model.Holding {
	return model.Holding{Symbol: symbol, Quantity: d(qty), CostBasis: d(cost)}
}

func ok(symbol, last, prior string) model.QuoteResult {
	return model.QuoteResult{Quote: model.Quote{Symbol: symbol, LastPrice: d(last), PriorClose: d(prior)}}
}

func failed(symbol string) model.QuoteResult {
	return model.QuoteResult{Quote: model.Quote{Symbol: symbol}, Err: fmt.Errorf("%w: timeout", model.ErrQuote)}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), "%s: want %s, got %s", msg, want, got)
}

func TestComputeScenario(t *testing.T) {
	holdings := []model.Holding{
		holding("TCS", "3", "3500"),
		holding("INFY", "5", "1450"),
		holding("HDFCBANK", "5", "1450"),
	}
	quotes := map[string]model.QuoteResult{
		"TCS":      ok("TCS", "3900", "3850"),
		"INFY":     ok("INFY", "1600", "1590"),
		"HDFCBANK": ok("HDFCBANK", "1700", "1690"),
	}

	snap := Compute(holdings, quotes, model.PolicyCountInvested, now)

	assertDecimal(t, "25000", snap.TotalInvested, "invested")
	assertDecimal(t, "28200", snap.TotalCurrentValue, "current value")
	assertDecimal(t, "3200", snap.UnrealizedPL, "pl")
	require.True(t, snap.TotalReturnPct.Valid)
	assertDecimal(t, "12.8", snap.TotalReturnPct.Decimal, "return pct")
	require.True(t, snap.DayChangePct.Valid)
	assert.True(t, snap.DayChangePct.Decimal.IsPositive())
	assert.False(t, snap.Degraded)
	assert.False(t, snap.Partial())
	assert.Equal(t, now, snap.ComputedAt)

	require.Len(t, snap.Positions, 3)
	assertDecimal(t, "11700", snap.Positions[0].CurrentValue.Decimal, "TCS value")
	assertDecimal(t, "1200", snap.Positions[0].ProfitLoss.Decimal, "TCS pl")
}

func TestComputeCurrentValueIsExactSum(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		n := 1 + rnd.Intn(8)
		holdings := make([]model.Holding, 0, n)
		quotes := make(map[string]model.QuoteResult, n)
		want := decimal.Zero

		for j := 0; j < n; j++ {
			symbol := fmt.Sprintf("S%d", j)
			qty := decimal.New(1+rnd.Int63n(100000), -3)
			last := decimal.New(1+rnd.Int63n(1000000), -2)
			prior := decimal.New(1+rnd.Int63n(1000000), -2)

			holdings = append(holdings, model.Holding{Symbol: symbol, Quantity: qty, CostBasis: decimal.New(1+rnd.Int63n(1000000), -2)})
			quotes[symbol] = model.QuoteResult{Quote: model.Quote{Symbol: symbol, LastPrice: last, PriorClose: prior}}
			want = want.Add(qty.Mul(last))
		}

		snap := Compute(holdings, quotes, model.PolicyCountInvested, now)
		require.True(t, snap.TotalCurrentValue.Equal(want), "iteration %d: want %s, got %s", i, want, snap.TotalCurrentValue)
		require.True(t, snap.UnrealizedPL.Equal(snap.TotalCurrentValue.Sub(snap.TotalInvested)))
	}
}

func TestComputeWeightedChangeUnderUniformChange(t *testing.T) {
	// every holding moved exactly +2% since the prior close
	holdings := []model.Holding{
		holding("A", "1", "10"),
		holding("B", "250", "10"),
		holding("C", "0.125", "10"),
	}
	quotes := map[string]model.QuoteResult{
		"A": ok("A", "102", "100"),
		"B": ok("B", "255", "250"),
		"C": ok("C", "5.1", "5"),
	}

	snap := Compute(holdings, quotes, model.PolicyCountInvested, now)
	require.True(t, snap.DayChangePct.Valid)
	assertDecimal(t, "2", snap.DayChangePct.Decimal, "weighted change")
}

func TestComputeWeightedChangeIsValueWeighted(t *testing.T) {
	holdings := []model.Holding{
		holding("A", "1", "1"),
		holding("B", "3", "1"),
	}
	// A: value 110, +10%. B: value 3*100=300, 0%.
	quotes := map[string]model.QuoteResult{
		"A": ok("A", "110", "100"),
		"B": ok("B", "100", "100"),
	}

	snap := Compute(holdings, quotes, model.PolicyCountInvested, now)
	// (110*0.1 + 300*0) / 410 * 100
	want := d("11").Div(d("410")).Mul(d("100"))
	assertDecimal(t, want.String(), snap.DayChangePct.Decimal, "weighted change")
}

func TestComputeEmptyHoldings(t *testing.T) {
	snap := Compute(nil, nil, model.PolicyCountInvested, now)

	assert.True(t, snap.Degraded)
	assert.True(t, snap.TotalInvested.IsZero())
	assert.True(t, snap.TotalCurrentValue.IsZero())
	assert.False(t, snap.TotalReturnPct.Valid)
	assert.False(t, snap.DayChangePct.Valid)
}

func TestComputeZeroInvestedDoesNotDivide(t *testing.T) {
	holdings := []model.Holding{{Symbol: "FREE", Quantity: d("10"), CostBasis: decimal.Zero}}
	quotes := map[string]model.QuoteResult{"FREE": ok("FREE", "5", "5")}

	require.NotPanics(t, func() {
		snap := Compute(holdings, quotes, model.PolicyCountInvested, now)
		assert.True(t, snap.Degraded)
		assert.False(t, snap.TotalReturnPct.Valid)
		assert.False(t, snap.Positions[0].ReturnPct.Valid)
	})
}

func TestComputeAllQuotesFailed(t *testing.T) {
	holdings := []model.Holding{holding("A", "1", "100"), holding("B", "2", "50")}
	quotes := map[string]model.QuoteResult{"A": failed("A"), "B": failed("B")}

	snap := Compute(holdings, quotes, model.PolicyCountInvested, now)

	assert.True(t, snap.Degraded)
	assert.True(t, snap.TotalCurrentValue.IsZero())
	assert.False(t, snap.DayChangePct.Valid)
	assert.False(t, snap.TotalReturnPct.Valid)
	assert.Equal(t, []string{"A", "B"}, snap.MissingQuotes)
}

func TestComputePartialFailure(t *testing.T) {
	holdings := []model.Holding{
		holding("A", "10", "100"),
		holding("B", "5", "200"),
		holding("C", "4", "250"),
	}
	quotes := map[string]model.QuoteResult{
		"A": ok("A", "110", "100"),
		"B": failed("B"),
		"C": ok("C", "300", "300"),
	}

	t.Run("count invested", func(t *testing.T) {
		snap := Compute(holdings, quotes, model.PolicyCountInvested, now)

		assertDecimal(t, "2300", snap.TotalCurrentValue, "current value over priced holdings")
		assertDecimal(t, "3000", snap.TotalInvested, "invested keeps the unpriced holding")
		assertDecimal(t, "-700", snap.UnrealizedPL, "pl")
		assert.True(t, snap.Partial())
		assert.Equal(t, []string{"B"}, snap.MissingQuotes)
		assert.False(t, snap.Degraded)
		assert.Contains(t, snap.Positions[1].QuoteErr, "timeout")
		assert.False(t, snap.Positions[1].CurrentValue.Valid)
	})

	t.Run("exclude", func(t *testing.T) {
		snap := Compute(holdings, quotes, model.PolicyExclude, now)

		assertDecimal(t, "2300", snap.TotalCurrentValue, "current value")
		assertDecimal(t, "2000", snap.TotalInvested, "invested without the unpriced holding")
		assertDecimal(t, "300", snap.UnrealizedPL, "pl")
		assertDecimal(t, "15", snap.TotalReturnPct.Decimal, "return pct")
		assert.True(t, snap.Partial())
	})
}

func TestComputeMissingPriorClose(t *testing.T) {
	holdings := []model.Holding{holding("A", "1", "100"), holding("B", "1", "100")}
	quotes := map[string]model.QuoteResult{
		"A": ok("A", "105", "100"),
		"B": ok("B", "300", "0"),
	}

	snap := Compute(holdings, quotes, model.PolicyCountInvested, now)

	assertDecimal(t, "405", snap.TotalCurrentValue, "B still counts in current value")
	assertDecimal(t, "5", snap.DayChangePct.Decimal, "B is left out of the weighted change")
	assert.False(t, snap.Positions[1].DayChangePct.Valid)
}

func TestComputeTreatsBadQuotesAsMissing(t *testing.T) {
	holdings := []model.Holding{holding("A", "1", "100"), holding("B", "1", "100")}
	quotes := map[string]model.QuoteResult{
		"A": ok("A", "0", "100"),
	}

	snap := Compute(holdings, quotes, model.PolicyCountInvested, now)
	assert.Equal(t, []string{"A", "B"}, snap.MissingQuotes)
	assert.Equal(t, "non-positive last price", snap.Positions[0].QuoteErr)
	assert.Equal(t, "no quote returned", snap.Positions[1].QuoteErr)
	assert.True(t, snap.Degraded)
	assert.True(t, errors.Is(failed("X").Err, model.ErrQuote))
}
