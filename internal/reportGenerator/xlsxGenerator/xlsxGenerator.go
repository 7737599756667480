package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/KotFed0t/portfolio_mood_light/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	holdingsSheet = "Holdings"
	timeLayout    = "2006-01-02 15:04:05"
)

var ErrEmptySnapshot = errors.New("snapshot has no positions")

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate writes the cycle result as a workbook with a summary sheet and a holdings sheet.
func (g *XLSXGenerator) Generate(ctx context.Context, result model.CycleResult) (fileBytes []byte, fileExtension string, err error) {
	cycleID := utils.GetCycleIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if len(result.Snapshot.Positions) == 0 {
		return nil, "", ErrEmptySnapshot
	}

	slog.Debug("Generate start", slog.String("cycleID", cycleID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, "", err
	}

	if err := fillSummary(f, result); err != nil {
		return nil, "", fmt.Errorf("summary sheet: %w", err)
	}

	if err := fillHoldings(f, result.Snapshot); err != nil {
		return nil, "", fmt.Errorf("holdings sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("cycleID", cycleID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
}

func fillSummary(f *excelize.File, result model.CycleResult) error {
	snap := result.Snapshot

	if err := f.MergeCell(summarySheet, "A1", "B1"); err != nil {
		return err
	}
	_ = f.SetCellStr(summarySheet, "A1", "Portfolio summary")

	styleID, err := headerStyle(f, "#cfe2f3")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A1", styleID); err != nil {
		return err
	}

	rows := []struct {
		label string
		value any
	}{
		{"computed at", snap.ComputedAt.Format(timeLayout)},
		{"cycle", result.CycleID},
		{"total invested", snap.TotalInvested.InexactFloat64()},
		{"current value", snap.TotalCurrentValue.InexactFloat64()},
		{"unrealized p/l", snap.UnrealizedPL.InexactFloat64()},
		{"total return %", nullFloat(snap.TotalReturnPct)},
		{"1d change %", nullFloat(snap.DayChangePct)},
		{"mood", result.Mood.String()},
		{"missing quote policy", string(snap.Policy)},
	}

	for i, row := range rows {
		_ = f.SetCellStr(summarySheet, fmt.Sprintf("A%d", i+2), row.label)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+2), row.value)
	}

	if snap.Partial() {
		rowNum := len(rows) + 3
		_ = f.SetCellStr(summarySheet, fmt.Sprintf("A%d", rowNum), "no quote for")
		for i, symbol := range snap.MissingQuotes {
			cell, err := excelize.CoordinatesToCellName(i+2, rowNum)
			if err != nil {
				return err
			}
			_ = f.SetCellStr(summarySheet, cell, symbol)
		}
	}

	return f.SetColWidth(summarySheet, "A", "A", 22)
}

func fillHoldings(f *excelize.File, snap model.Snapshot) error {
	if _, err := f.NewSheet(holdingsSheet); err != nil {
		return err
	}

	headers := []string{"symbol", "qty", "buy price", "invested", "last price", "prior close", "current value", "p/l", "return %", "1d %", "error"}

	styleID, err := headerStyle(f, "#d9ead3")
	if err != nil {
		return err
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellStr(holdingsSheet, cell, h)
	}

	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(holdingsSheet, "A1", lastHeader, styleID); err != nil {
		return err
	}

	for i, p := range snap.Positions {
		row := i + 2
		_ = f.SetCellStr(holdingsSheet, fmt.Sprintf("A%d", row), p.Symbol)
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("B%d", row), p.Quantity.InexactFloat64())
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("C%d", row), p.CostBasis.InexactFloat64())
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("D%d", row), p.Invested.InexactFloat64())

		if p.Quote != nil {
			_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("E%d", row), p.Quote.LastPrice.InexactFloat64())
			_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("F%d", row), p.Quote.PriorClose.InexactFloat64())
		}

		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("G%d", row), nullFloat(p.CurrentValue))
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("H%d", row), nullFloat(p.ProfitLoss))
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("I%d", row), nullFloat(p.ReturnPct))
		_ = f.SetCellValue(holdingsSheet, fmt.Sprintf("J%d", row), nullFloat(p.DayChangePct))
		_ = f.SetCellStr(holdingsSheet, fmt.Sprintf("K%d", row), p.QuoteErr)
	}

	return nil
}

// nullFloat leaves the cell empty for undefined values.
func nullFloat(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.Round(4).InexactFloat64()
}
