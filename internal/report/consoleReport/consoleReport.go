package consoleReport

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/KotFed0t/portfolio_mood_light/internal/report"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	summaryStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	gainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	lossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	flatStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// ConsoleReport prints a summary and a holdings table after every cycle.
type ConsoleReport struct {
	out io.Writer
}

func New(out io.Writer) *ConsoleReport {
	return &ConsoleReport{out: out}
}

func (r *ConsoleReport) Report(ctx context.Context, result model.CycleResult) error {
	_, err := io.WriteString(r.out, Render(result)+"\n")
	return err
}

func Render(result model.CycleResult) string {
	snap := result.Snapshot

	var b strings.Builder

	b.WriteString(titleStyle.Render("Portfolio Summary"))
	b.WriteString("\n")

	summary := []string{
		"Date/Time:      " + snap.ComputedAt.Format(timeLayout),
		"Total Invested: " + report.Money(snap.TotalInvested),
		"Current Value:  " + report.Money(snap.TotalCurrentValue),
		"Unrealized P/L: " + signed(snap.UnrealizedPL, report.Money(snap.UnrealizedPL)),
		"Total Return:   " + signedPct(snap.TotalReturnPct),
		"1D Change:      " + signedPct(snap.DayChangePct),
		"Mood:           " + moodStyle(result.Mood).Render(result.Mood.String()),
	}
	b.WriteString(summaryStyle.Render(strings.Join(summary, "\n")))
	b.WriteString("\n")

	if len(snap.Positions) > 0 {
		b.WriteString(holdingsTable(snap.Positions))
		b.WriteString("\n")
	}

	if snap.Partial() {
		b.WriteString(warnStyle.Render(fmt.Sprintf("No quote for: %s", strings.Join(snap.MissingQuotes, ", "))))
		b.WriteString("\n")
	}

	if snap.Degraded {
		b.WriteString(warnStyle.Render("No usable market data this cycle"))
		b.WriteString("\n")
	}

	if result.ActuatorErr != "" {
		b.WriteString(warnStyle.Render("Light not updated: " + result.ActuatorErr))
		b.WriteString("\n")
	}

	return b.String()
}

func holdingsTable(positions []model.Position) string {
	rows := make([][]string, 0, len(positions))
	for _, p := range positions {
		current := report.Placeholder
		if p.Quote != nil {
			current = report.Money(p.Quote.LastPrice)
		}

		pl := report.NullMoney(p.ProfitLoss)
		if p.ProfitLoss.Valid {
			pl = signed(p.ProfitLoss.Decimal, pl)
		}

		rows = append(rows, []string{
			p.Symbol,
			p.Quantity.String(),
			report.Money(p.CostBasis),
			current,
			pl,
			signedPct(p.ReturnPct),
			signedPct(p.DayChangePct),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Symbol", "Qty", "Buy", "Current", "P/L", "Ret%", "1D%").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return cellStyle
			}
			return cellStyle.Align(lipgloss.Right)
		})

	return t.Render()
}

func signed(d decimal.Decimal, text string) string {
	switch d.Sign() {
	case 1:
		return gainStyle.Render(text)
	case -1:
		return lossStyle.Render(text)
	default:
		return text
	}
}

func signedPct(d decimal.NullDecimal) string {
	if !d.Valid {
		return report.Pct(d)
	}
	return signed(d.Decimal, report.Pct(d))
}

func moodStyle(m model.Mood) lipgloss.Style {
	switch m {
	case model.MoodGain:
		return gainStyle.Bold(true)
	case model.MoodLoss:
		return lossStyle.Bold(true)
	default:
		return flatStyle.Bold(true)
	}
}
