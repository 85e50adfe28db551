package tools

import "context"

// PricePoint is one daily close of a price series.
type PricePoint struct {
	Date  string
	Close float64
}

// Chart is the price-history artifact a tool can emit alongside its text
// result.
type Chart struct {
	Symbol   string
	Currency string
	Points   []PricePoint
}

// ChartSink receives chart artifacts on a side channel to the chat UI.
// SubmitChart must block until the chart has been handed off, so the
// artifact is enqueued before the tool's text result reaches the model.
type ChartSink interface {
	SubmitChart(ctx context.Context, chart Chart) error
}
