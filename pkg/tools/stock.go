package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	agent "github.com/quantbrief/go-insight-agent"
)

const defaultMarketDataURL = "https://www.alphavantage.co"

// defaultHistoryWindow is the trailing number of daily closes used for the
// moving average and volatility figures.
const defaultHistoryWindow = 20

// StockPriceTool looks up the latest price for a ticker symbol and enriches
// it with a simple moving average and a standard-deviation volatility over
// the trailing daily closes. When a ChartSink is attached, the price series
// is also emitted as a chart before the text result is returned.
type StockPriceTool struct {
	APIKey        string
	BaseURL       string
	HTTPClient    *http.Client
	Chart         ChartSink
	HistoryWindow int
}

// NewStockPriceTool reads ALPHAVANTAGE_API_KEY from the environment.
func NewStockPriceTool(sink ChartSink) *StockPriceTool {
	return &StockPriceTool{
		APIKey:        os.Getenv("ALPHAVANTAGE_API_KEY"),
		BaseURL:       defaultMarketDataURL,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
		Chart:         sink,
		HistoryWindow: defaultHistoryWindow,
	}
}

func (t *StockPriceTool) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name: "get_stock_price",
		Description: "Useful for getting the latest stock price data for a given symbol. " +
			"Returns the latest price and currency, plus a short trend summary.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"symbol": map[string]any{
					"type":        "string",
					"description": "The stock symbol to look up (e.g., 'AAPL', 'MSFT').",
				},
			},
			"required": []string{"symbol"},
		},
	}
}

func (t *StockPriceTool) Invoke(ctx context.Context, req agent.ToolRequest) (agent.ToolResponse, error) {
	symbol := strings.ToUpper(strings.TrimSpace(fmt.Sprint(req.Arguments["symbol"])))
	if symbol == "" || symbol == "<NIL>" {
		return agent.ToolResponse{Content: "Could not fetch price: no stock symbol was provided."}, nil
	}
	if strings.TrimSpace(t.APIKey) == "" {
		return agent.ToolResponse{Content: "Error: market data is unavailable because ALPHAVANTAGE_API_KEY is not set."}, nil
	}

	currency := "USD"
	price, quoteErr := t.fetchQuote(ctx, symbol)
	history, histErr := t.fetchHistory(ctx, symbol)

	if quoteErr != nil && histErr != nil {
		return agent.ToolResponse{Content: fmt.Sprintf("Error fetching stock data for %s: %v", symbol, quoteErr)}, nil
	}
	if price == 0 && len(history) > 0 {
		// No real-time quote; fall back to the last historical close.
		price = history[len(history)-1].Close
	}
	if price == 0 {
		return agent.ToolResponse{Content: fmt.Sprintf("Could not fetch price for %s. The symbol might be invalid.", symbol)}, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "The current price of %s is %.2f %s.", symbol, price, currency)

	window := t.HistoryWindow
	if window <= 0 {
		window = defaultHistoryWindow
	}
	if len(history) >= 2 {
		closes := trailingCloses(history, window)
		sma := stat.Mean(closes, nil)
		volatility := stat.StdDev(closes, nil)
		fmt.Fprintf(&sb, " Over the last %d trading days the average close was %.2f with a volatility of %.2f.",
			len(closes), sma, volatility)
	}

	if t.Chart != nil && len(history) > 0 {
		// Blocking handoff: the chart must be enqueued before the text
		// result is returned to the model.
		_ = t.Chart.SubmitChart(ctx, Chart{Symbol: symbol, Currency: currency, Points: history})
	}

	return agent.ToolResponse{
		Content:  sb.String(),
		Metadata: map[string]string{"symbol": symbol},
	}, nil
}

func (t *StockPriceTool) fetchQuote(ctx context.Context, symbol string) (float64, error) {
	raw, err := t.get(ctx, url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
		"apikey":   {t.APIKey},
	})
	if err != nil {
		return 0, err
	}

	var payload struct {
		Quote map[string]string `json:"Global Quote"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, fmt.Errorf("decode quote: %w", err)
	}
	priceField, ok := payload.Quote["05. price"]
	if !ok {
		return 0, nil
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(priceField), 64)
	if err != nil {
		return 0, fmt.Errorf("parse quote price: %w", err)
	}
	return price, nil
}

func (t *StockPriceTool) fetchHistory(ctx context.Context, symbol string) ([]PricePoint, error) {
	raw, err := t.get(ctx, url.Values{
		"function": {"TIME_SERIES_DAILY"},
		"symbol":   {symbol},
		"apikey":   {t.APIKey},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Series map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	points := make([]PricePoint, 0, len(payload.Series))
	for date, fields := range payload.Series {
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(fields["4. close"]), 64)
		if err != nil {
			continue
		}
		points = append(points, PricePoint{Date: date, Close: closePrice})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

func (t *StockPriceTool) get(ctx context.Context, query url.Values) ([]byte, error) {
	endpoint := strings.TrimRight(t.BaseURL, "/") + "/query?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data provider returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func (t *StockPriceTool) httpClient() *http.Client {
	if t.HTTPClient != nil {
		return t.HTTPClient
	}
	return http.DefaultClient
}

func trailingCloses(points []PricePoint, window int) []float64 {
	start := len(points) - window
	if start < 0 {
		start = 0
	}
	closes := make([]float64, 0, len(points)-start)
	for _, p := range points[start:] {
		closes = append(closes, p.Close)
	}
	return closes
}

var _ agent.Tool = (*StockPriceTool)(nil)
