package yahooApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KotFed0t/portfolio_mood_light/config"
	"github.com/KotFed0t/portfolio_mood_light/internal/externalApi"
	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/KotFed0t/portfolio_mood_light/internal/model/yahooModel"
	"github.com/KotFed0t/portfolio_mood_light/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	chartPath = "/v8/finance/chart/{symbol}"
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) portfolio_mood_light"
	source    = "yahoo_chart"
)

// YahooApi reads single-symbol quotes from the chart endpoint. It is the slow path,
// used for symbols the batch quote call could not price.
type YahooApi struct {
	client  *resty.Client
	limiter *rate.Limiter
}

func New(cfg *config.Config) *YahooApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.YahooApi.Url).
		SetHeader("User-Agent", userAgent)

	limit := cfg.API.YahooApi.RateLimit
	if limit <= 0 {
		limit = 1
	}

	return &YahooApi{client: client, limiter: rate.NewLimiter(rate.Limit(limit), limit)}
}

func (a *YahooApi) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	cycleID := utils.GetCycleIDFromCtx(ctx)
	op := "YahooApi.GetQuote"

	slog.Debug("start YahooApi.GetQuote request", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("symbol", symbol))

	if err := a.limiter.Wait(ctx); err != nil {
		return model.Quote{}, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"range":    "2d",
			"interval": "1d",
		}).
		Get(chartPath)

	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, fmt.Errorf("%w: %w", externalApi.ErrUnavailable, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return model.Quote{}, externalApi.ErrNotFound
	}

	if resp.IsError() {
		slog.Error("YahooApi returned error status", slog.String("cycleID", cycleID), slog.String("op", op), slog.Int("status", resp.StatusCode()))
		return model.Quote{}, fmt.Errorf("%w: status %d", externalApi.ErrUnavailable, resp.StatusCode())
	}

	chart := yahooModel.ChartResponse{}
	err = json.Unmarshal(resp.Body(), &chart)
	if err != nil {
		slog.Error("can't unmarshall response into yahooModel.ChartResponse", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	quote, err := parseChart(symbol, chart)
	if err != nil {
		slog.Warn("can't parse chart", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	slog.Debug("YahooApi.GetQuote request complete", slog.String("cycleID", cycleID), slog.String("op", op), slog.Any("quote", quote))

	return quote, nil
}

// parseChart prefers the meta fields and fills gaps from the last two daily closes.
func parseChart(symbol string, chart yahooModel.ChartResponse) (model.Quote, error) {
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return model.Quote{}, externalApi.ErrNotFound
		}
		return model.Quote{}, fmt.Errorf("chart error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}

	if len(chart.Chart.Result) == 0 {
		return model.Quote{}, externalApi.ErrNotFound
	}

	res := chart.Chart.Result[0]

	var closes []float64
	if len(res.Indicators.Quote) > 0 {
		for _, c := range res.Indicators.Quote[0].Close {
			if c != nil && *c > 0 {
				closes = append(closes, *c)
			}
		}
	}

	last := positive(res.Meta.RegularMarketPrice)
	if last == 0 && len(closes) > 0 {
		last = closes[len(closes)-1]
	}

	prior := positive(res.Meta.PreviousClose)
	if prior == 0 && len(closes) >= 2 {
		prior = closes[len(closes)-2]
	}
	if prior == 0 {
		prior = positive(res.Meta.ChartPreviousClose)
	}

	if last == 0 {
		return model.Quote{}, fmt.Errorf("%w: no price in chart", externalApi.ErrNotFound)
	}

	return model.Quote{
		Symbol:     symbol,
		LastPrice:  decimal.NewFromFloat(last),
		PriorClose: decimal.NewFromFloat(prior),
		Source:     source,
	}, nil
}

func positive(v *float64) float64 {
	if v == nil || *v <= 0 {
		return 0
	}
	return *v
}
