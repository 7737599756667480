package quoteService

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_mood_light/config"
	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/KotFed0t/portfolio_mood_light/utils"
)

type BatchApi interface {
	GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error)
}

type SingleApi interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
}

type QuoteService struct {
	batch   BatchApi
	single  SingleApi
	suffix  string
	timeout time.Duration
}

func New(cfg *config.Config, batch BatchApi, single SingleApi) *QuoteService {
	return &QuoteService{
		batch:   batch,
		single:  single,
		suffix:  strings.ToUpper(strings.TrimSpace(cfg.Quotes.SymbolSuffix)),
		timeout: cfg.Quotes.Timeout,
	}
}

// NormalizeSymbol maps a holding symbol to the provider symbol.
func NormalizeSymbol(symbol, suffix string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if suffix != "" && !strings.HasSuffix(s, suffix) {
		s += suffix
	}
	return s
}

// Fetch returns one result per requested holding symbol. A failing provider never fails the whole call:
// symbols it could not price carry an error wrapping model.ErrQuote.
func (s *QuoteService) Fetch(ctx context.Context, symbols []string) map[string]model.QuoteResult {
	cycleID := utils.GetCycleIDFromCtx(ctx)
	op := "QuoteService.Fetch"

	slog.Debug("Fetch start", slog.String("cycleID", cycleID), slog.String("op", op), slog.Any("symbols", symbols))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	providerSymbols := make([]string, 0, len(symbols))
	byProvider := make(map[string][]string, len(symbols))
	for _, symbol := range symbols {
		ps := NormalizeSymbol(symbol, s.suffix)
		if _, dup := byProvider[ps]; !dup {
			providerSymbols = append(providerSymbols, ps)
		}
		byProvider[ps] = append(byProvider[ps], symbol)
	}

	results := make(map[string]model.QuoteResult, len(symbols))

	batchQuotes, err := s.batch.GetQuotes(ctx, providerSymbols)
	if err != nil {
		slog.Warn("batch quotes failed, falling back to single requests", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", err.Error()))
	}

	for _, ps := range providerSymbols {
		var res model.QuoteResult

		quote, ok := batchQuotes[ps]
		if ok && quote.LastPrice.IsPositive() && quote.PriorClose.IsPositive() {
			res = model.QuoteResult{Quote: quote}
		} else {
			res = s.fetchSingle(ctx, ps, quote, ok)
		}

		for _, symbol := range byProvider[ps] {
			results[symbol] = withSymbol(res, symbol)
		}
	}

	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}

	slog.Debug("Fetch finished", slog.String("cycleID", cycleID), slog.String("op", op), slog.Int("quotes", len(results)-failed), slog.Int("failed", failed))

	return results
}

// fetchSingle asks the per-symbol endpoint. A usable batch price without a prior close is kept
// when the single request fails, since the valuator can still count it in the current value.
func (s *QuoteService) fetchSingle(ctx context.Context, providerSymbol string, batchQuote model.Quote, inBatch bool) model.QuoteResult {
	cycleID := utils.GetCycleIDFromCtx(ctx)
	op := "QuoteService.fetchSingle"

	if ctx.Err() != nil {
		return fallbackResult(providerSymbol, batchQuote, inBatch, ctx.Err())
	}

	quote, err := s.single.GetQuote(ctx, providerSymbol)
	if err != nil {
		slog.Warn("quote unavailable", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("symbol", providerSymbol), slog.String("err", err.Error()))
		return fallbackResult(providerSymbol, batchQuote, inBatch, err)
	}

	return model.QuoteResult{Quote: quote}
}

func fallbackResult(providerSymbol string, batchQuote model.Quote, inBatch bool, err error) model.QuoteResult {
	if inBatch && batchQuote.LastPrice.IsPositive() {
		return model.QuoteResult{Quote: batchQuote}
	}

	return model.QuoteResult{Err: fmt.Errorf("%w: %s: %w", model.ErrQuote, providerSymbol, err)}
}

// withSymbol keys the quote back to the holding symbol the caller asked for.
func withSymbol(res model.QuoteResult, symbol string) model.QuoteResult {
	res.Quote.Symbol = symbol
	return res
}
