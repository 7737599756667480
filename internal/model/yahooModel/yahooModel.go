package yahooModel

// ChartResponse is the subset of /v8/finance/chart/{symbol} the quote fallback reads.
type ChartResponse struct {
	Chart Chart `json:"chart"`
}

type Chart struct {
	Result []ChartResult `json:"result"`
	Error  *ChartError   `json:"error"`
}

type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type ChartResult struct {
	Meta       Meta       `json:"meta"`
	Indicators Indicators `json:"indicators"`
}

type Meta struct {
	Symbol             string   `json:"symbol"`
	Currency           string   `json:"currency"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	PreviousClose      *float64 `json:"previousClose"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
}

type Indicators struct {
	Quote []QuoteIndicator `json:"quote"`
}

type QuoteIndicator struct {
	Close []*float64 `json:"close"`
}
