package xlsxGenerator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestGenerate(t *testing.T) {
	tcs := model.Quote{Symbol: "TCS", LastPrice: d("4000"), PriorClose: d("3900")}
	result := model.CycleResult{
		CycleID: "cycle-1",
		Mood:    model.MoodGain,
		Snapshot: model.Snapshot{
			ComputedAt:        time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
			Policy:            model.PolicyCountInvested,
			TotalInvested:     d("17750"),
			TotalCurrentValue: d("12000"),
			UnrealizedPL:      d("-5750"),
			TotalReturnPct:    decimal.NewNullDecimal(d("-32.39436619")),
			DayChangePct:      decimal.NewNullDecimal(d("2.5641")),
			MissingQuotes:     []string{"INFY"},
			Positions: []model.Position{
				{
					Holding:      model.Holding{Symbol: "TCS", Quantity: d("3"), CostBasis: d("3500")},
					Quote:        &tcs,
					Invested:     d("10500"),
					CurrentValue: decimal.NewNullDecimal(d("12000")),
					ProfitLoss:   decimal.NewNullDecimal(d("1500")),
				},
				{
					Holding:  model.Holding{Symbol: "INFY", Quantity: d("5"), CostBasis: d("1450")},
					Invested: d("7250"),
					QuoteErr: "quote unavailable",
				},
			},
		},
	}

	raw, ext, err := New().Generate(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", ext)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, holdingsSheet}, f.GetSheetList())

	cell := func(sheet, name string) string {
		v, err := f.GetCellValue(sheet, name)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "2025-03-14 09:30:00", cell(summarySheet, "B2"))
	assert.Equal(t, "17750", cell(summarySheet, "B4"))
	assert.Equal(t, "-32.3944", cell(summarySheet, "B7"))
	assert.Equal(t, "gain", cell(summarySheet, "B9"))
	assert.Equal(t, "INFY", cell(summarySheet, "B12"))

	assert.Equal(t, "symbol", cell(holdingsSheet, "A1"))
	assert.Equal(t, "TCS", cell(holdingsSheet, "A2"))
	assert.Equal(t, "4000", cell(holdingsSheet, "E2"))
	assert.Equal(t, "INFY", cell(holdingsSheet, "A3"))
	assert.Equal(t, "", cell(holdingsSheet, "E3"))
	assert.Equal(t, "quote unavailable", cell(holdingsSheet, "K3"))
}

func TestGenerateEmpty(t *testing.T) {
	_, _, err := New().Generate(context.Background(), model.CycleResult{})
	require.ErrorIs(t, err, ErrEmptySnapshot)
}
