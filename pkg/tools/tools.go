package tools

import agent "github.com/quantbrief/go-insight-agent"

// Default returns the standard adapter set in presentation order:
// encyclopedia, web search, market data.
func Default(sink ChartSink) []agent.Tool {
	return []agent.Tool{
		NewWikipediaTool(),
		NewWebSearchTool(),
		NewStockPriceTool(sink),
	}
}
