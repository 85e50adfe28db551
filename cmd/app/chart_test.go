package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/quantbrief/go-insight-agent/pkg/tools"
)

func TestSubmitChartBlocksUntilRendered(t *testing.T) {
	var buf bytes.Buffer
	sink := &terminalChartSink{out: &buf}

	err := sink.SubmitChart(context.Background(), tools.Chart{
		Symbol:   "AAPL",
		Currency: "USD",
		Points:   []tools.PricePoint{{Date: "2026-08-27", Close: 10}, {Date: "2026-08-28", Close: 20}},
	})
	if err != nil {
		t.Fatalf("SubmitChart returned error: %v", err)
	}
	// Blocking handoff: once SubmitChart returns, the chart is rendered.
	if !strings.Contains(buf.String(), "AAPL (USD), 2 closes") {
		t.Fatalf("chart not rendered before return: %q", buf.String())
	}
}

func TestSparkline(t *testing.T) {
	points := []tools.PricePoint{{Close: 1}, {Close: 2}, {Close: 3}}
	line := sparkline(points)
	if len([]rune(line)) != 3 {
		t.Fatalf("expected 3 symbols, got %q", line)
	}
	if line == "" || sparkline(nil) != "" {
		t.Fatal("unexpected sparkline output")
	}

	flat := sparkline([]tools.PricePoint{{Close: 5}, {Close: 5}})
	if flat != "▁▁" {
		t.Fatalf("flat series should use the lowest level, got %q", flat)
	}
}
