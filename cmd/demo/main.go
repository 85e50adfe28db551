// Offline walkthrough of the agent loop using a scripted model. No API
// keys are needed: the market-data tool reports its missing credential and
// the script shows the model recovering from that observation.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/quantbrief/go-insight-agent/pkg/models"
	"github.com/quantbrief/go-insight-agent/pkg/runtime"
	"github.com/quantbrief/go-insight-agent/pkg/tools"
)

func main() {
	ctx := context.Background()

	script := models.NewScriptedLLM(
		models.ChatResponse{ToolCalls: []models.ToolCall{{
			ID: "call-1", Name: "get_stock_price", Arguments: `{"symbol":"AAPL"}`,
		}}},
		models.ChatResponse{Content: "I could not reach the market data provider (no API key configured), so I cannot quote AAPL right now."},
		models.ChatResponse{Content: "An agent loop lets a language model call tools, read their results, and only then answer."},
	)

	stock := tools.NewStockPriceTool(nil)
	stock.APIKey = "" // force the credential-gated path

	rt, err := runtime.New(ctx,
		runtime.WithModel(func(context.Context) (models.ChatModel, error) { return script, nil }),
		runtime.WithTools(stock),
	)
	if err != nil {
		log.Fatalf("start runtime: %v", err)
	}

	session := rt.NewSession("demo")
	for _, msg := range []string{
		"What is the price of AAPL?",
		"What does an agent loop do?",
	} {
		result, err := session.Respond(ctx, msg)
		if err != nil {
			fmt.Printf("agent error: %v\n", err)
			continue
		}
		fmt.Printf("User: %s\n", msg)
		for _, step := range result.Steps {
			fmt.Printf("  [%s] %s\n", step.Call.Name, step.Observation)
		}
		fmt.Printf("Agent: %s\n\n", result.Output)
	}

	fmt.Printf("history entries: %d\n", session.History().Len())
}
