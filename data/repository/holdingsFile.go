package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/KotFed0t/portfolio_mood_light/config"
	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/KotFed0t/portfolio_mood_light/utils"
	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// rawHolding keeps numbers untyped so that both JSON and TOML documents decode
// without going through float64 where the source had an exact literal.
type rawHolding struct {
	Symbol   string `json:"symbol" toml:"symbol"`
	Qty      any    `json:"qty" toml:"qty"`
	BuyPrice any    `json:"buy_price" toml:"buy_price"`
}

type tomlDocument struct {
	Holdings []rawHolding `toml:"holdings"`
}

type HoldingsFile struct {
	path            string
	mergeDuplicates bool
}

func NewHoldingsFile(cfg *config.Config) *HoldingsFile {
	return &HoldingsFile{path: cfg.Holdings.File, mergeDuplicates: cfg.Holdings.MergeDuplicates}
}

func (r *HoldingsFile) Path() string {
	return r.path
}

// Load reads and validates the whole file. Either every entry is valid or ErrConfig is returned.
func (r *HoldingsFile) Load(ctx context.Context) (holdings []model.Holding, err error) {
	cycleID := utils.GetCycleIDFromCtx(ctx)
	op := "HoldingsFile.Load"

	slog.Debug("Load start", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("path", r.path))
	defer func() {
		if err != nil {
			slog.Error("Load failed", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("Load completed", slog.String("cycleID", cycleID), slog.String("op", op), slog.Int("holdings", len(holdings)))
		}
	}()

	content, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfig, r.path, err)
	}

	var raw []rawHolding
	switch ext := strings.ToLower(filepath.Ext(r.path)); ext {
	case ".json":
		raw, err = decodeJSON(content)
	case ".toml":
		raw, err = decodeTOML(content)
	default:
		return nil, fmt.Errorf("%w: unsupported file extension %q, use .json or .toml", ErrConfig, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrConfig, r.path, err)
	}

	return parseHoldings(raw, r.mergeDuplicates)
}

func decodeJSON(content []byte) ([]rawHolding, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var raw []rawHolding
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected content after the holdings list")
	}

	return raw, nil
}

func decodeTOML(content []byte) ([]rawHolding, error) {
	var doc tomlDocument
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	return doc.Holdings, nil
}

// parseHoldings validates decoded records in file order.
func parseHoldings(raw []rawHolding, mergeDuplicates bool) ([]model.Holding, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no holdings", ErrConfig)
	}

	holdings := make([]model.Holding, 0, len(raw))
	index := make(map[string]int, len(raw))

	for i, rec := range raw {
		symbol := strings.ToUpper(strings.TrimSpace(rec.Symbol))
		if symbol == "" {
			return nil, fmt.Errorf("%w: entry %d: missing symbol", ErrConfig, i)
		}

		qty, err := toDecimal(rec.Qty)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d (%s): qty: %w", ErrConfig, i, symbol, err)
		}
		if !qty.IsPositive() {
			return nil, fmt.Errorf("%w: entry %d (%s): qty must be positive, got %s", ErrConfig, i, symbol, qty)
		}

		price, err := toDecimal(rec.BuyPrice)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d (%s): buy_price: %w", ErrConfig, i, symbol, err)
		}
		if !price.IsPositive() {
			return nil, fmt.Errorf("%w: entry %d (%s): buy_price must be positive, got %s", ErrConfig, i, symbol, price)
		}

		holding := model.Holding{Symbol: symbol, Quantity: qty, CostBasis: price}

		pos, seen := index[symbol]
		if !seen {
			index[symbol] = len(holdings)
			holdings = append(holdings, holding)
			continue
		}

		if !mergeDuplicates {
			return nil, fmt.Errorf("%w: %w: %s", ErrConfig, ErrDuplicateSymbol, symbol)
		}

		slog.Warn("merging duplicate holding", slog.String("symbol", symbol), slog.Int("entry", i))
		holdings[pos] = mergeHoldings(holdings[pos], holding)
	}

	return holdings, nil
}

// mergeHoldings sums quantities and keeps the quantity weighted average cost.
func mergeHoldings(a, b model.Holding) model.Holding {
	qty := a.Quantity.Add(b.Quantity)
	return model.Holding{
		Symbol:    a.Symbol,
		Quantity:  qty,
		CostBasis: a.Invested().Add(b.Invested()).Div(qty),
	}
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Decimal{}, errors.New("missing value")
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, fmt.Errorf("not a finite number: %v", n)
		}
		return decimal.NewFromFloat(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(n))
	default:
		return decimal.Decimal{}, fmt.Errorf("unexpected type %T", v)
	}
}
