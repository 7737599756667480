package financeApi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_mood_light/internal/externalApi"
	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/KotFed0t/portfolio_mood_light/utils"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

const source = "yahoo_quote"

type listFn func(symbols []string) ([]finance.Quote, error)

// FinanceApi fetches all symbols of a cycle with one batched quote request.
type FinanceApi struct {
	list listFn
}

func New() *FinanceApi {
	return &FinanceApi{list: listQuotes}
}

func listQuotes(symbols []string) ([]finance.Quote, error) {
	iter := quote.List(symbols)

	res := make([]finance.Quote, 0, len(symbols))
	for iter.Next() {
		if q := iter.Quote(); q != nil {
			res = append(res, *q)
		}
	}

	return res, iter.Err()
}

type listResult struct {
	quotes []finance.Quote
	err    error
}

// GetQuotes returns the quotes the provider knows about. Symbols it did not return are absent from the map.
// The call is abandoned when ctx is done; the underlying client has no context support.
func (a *FinanceApi) GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	cycleID := utils.GetCycleIDFromCtx(ctx)
	op := "FinanceApi.GetQuotes"

	slog.Debug("start FinanceApi.GetQuotes request", slog.String("cycleID", cycleID), slog.String("op", op), slog.Any("symbols", symbols))

	if len(symbols) == 0 {
		return map[string]model.Quote{}, nil
	}

	done := make(chan listResult, 1)
	go func() {
		quotes, err := a.list(symbols)
		done <- listResult{quotes: quotes, err: err}
	}()

	var res listResult
	select {
	case <-ctx.Done():
		slog.Error("FinanceApi.GetQuotes abandoned", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", ctx.Err().Error()))
		return nil, fmt.Errorf("%w: %w", externalApi.ErrUnavailable, ctx.Err())
	case res = <-done:
	}

	if res.err != nil && len(res.quotes) == 0 {
		slog.Error("error while fetching batch quotes", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", res.err.Error()))
		return nil, fmt.Errorf("%w: %w", externalApi.ErrUnavailable, res.err)
	}

	if res.err != nil {
		slog.Warn("batch quotes returned partially", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", res.err.Error()))
	}

	quotes := make(map[string]model.Quote, len(res.quotes))
	for _, q := range res.quotes {
		if q.Symbol == "" {
			continue
		}
		quotes[q.Symbol] = model.Quote{
			Symbol:     q.Symbol,
			LastPrice:  decimal.NewFromFloat(q.RegularMarketPrice),
			PriorClose: decimal.NewFromFloat(q.RegularMarketPreviousClose),
			Source:     source,
		}
	}

	slog.Debug("FinanceApi.GetQuotes request complete", slog.String("cycleID", cycleID), slog.String("op", op), slog.Int("quotes", len(quotes)))

	return quotes, nil
}
