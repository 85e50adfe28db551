package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quantbrief/go-insight-agent/pkg/memory"
	"github.com/quantbrief/go-insight-agent/pkg/models"
)

type stubTool struct {
	spec      ToolSpec
	response  string
	err       error
	lastInput ToolRequest
	calls     int
}

func (t *stubTool) Spec() ToolSpec { return t.spec }
func (t *stubTool) Invoke(_ context.Context, req ToolRequest) (ToolResponse, error) {
	t.calls++
	t.lastInput = req
	if t.err != nil {
		return ToolResponse{}, t.err
	}
	return ToolResponse{Content: t.response}, nil
}

func newStockStub(response string) *stubTool {
	return &stubTool{
		spec: ToolSpec{
			Name:        "get_stock_price",
			Description: "Latest stock price for a symbol.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"symbol": map[string]any{"type": "string", "description": "Ticker symbol."},
				},
				"required": []string{"symbol"},
			},
		},
		response: response,
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	a, err := New(Options{Model: models.NewScriptedLLM()})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if a.systemPrompt == "" {
		t.Fatal("expected default system prompt to be applied")
	}
	if a.maxRounds != DefaultMaxRounds {
		t.Fatalf("expected default round cap of %d, got %d", DefaultMaxRounds, a.maxRounds)
	}
	if a.contextTurns != DefaultContextTurns {
		t.Fatalf("expected default context turns of %d, got %d", DefaultContextTurns, a.contextTurns)
	}
}

func TestNewValidatesRequirements(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error when model is missing")
	}
}

func TestNewRejectsEmptyInput(t *testing.T) {
	a, _ := New(Options{Model: models.NewScriptedLLM()})
	if _, err := a.Run(context.Background(), "s1", memory.NewHistory(), "   "); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestRunReturnsFinalAnswerWithoutTools(t *testing.T) {
	model := models.NewScriptedLLM(models.ChatResponse{Content: "Hello!"})
	a, _ := New(Options{Model: model})

	result, err := a.Run(context.Background(), "s1", memory.NewHistory(), "Hi")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Output != "Hello!" {
		t.Fatalf("unexpected output: %q", result.Output)
	}
	if len(result.Steps) != 0 {
		t.Fatalf("expected no steps, got %d", len(result.Steps))
	}
}

func TestRunInvokesRequestedToolAndIncorporatesResult(t *testing.T) {
	stock := newStockStub("The current price of AAPL is 189.12 USD.")
	model := models.NewScriptedLLM(
		models.ChatResponse{ToolCalls: []models.ToolCall{{
			ID: "call-1", Name: "get_stock_price", Arguments: `{"symbol":"AAPL"}`,
		}}},
		models.ChatResponse{Content: "AAPL trades at 189.12 USD right now."},
	)
	a, _ := New(Options{Model: model, Tools: []Tool{stock}})

	result, err := a.Run(context.Background(), "s1", memory.NewHistory(), "What is the price of AAPL?")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stock.calls != 1 {
		t.Fatalf("expected exactly one tool invocation, got %d", stock.calls)
	}
	if got := stock.lastInput.Arguments["symbol"]; got != "AAPL" {
		t.Fatalf("tool received wrong symbol: %v", got)
	}
	if len(result.Steps) != 1 || result.Steps[0].Observation != "The current price of AAPL is 189.12 USD." {
		t.Fatalf("unexpected steps: %+v", result.Steps)
	}
	if !strings.Contains(result.Output, "189.12") {
		t.Fatalf("final answer should incorporate the price, got %q", result.Output)
	}

	// The observation must have been fed back as a tool message before the
	// second model call.
	second := model.Requests[1]
	last := second.Messages[len(second.Messages)-1]
	if last.Role != models.RoleTool || last.ToolCallID != "call-1" {
		t.Fatalf("expected trailing tool observation, got %+v", last)
	}
}

func TestRunUnknownToolYieldsObservationNotError(t *testing.T) {
	model := models.NewScriptedLLM(
		models.ChatResponse{ToolCalls: []models.ToolCall{{
			ID: "call-1", Name: "teleport", Arguments: `{}`,
		}}},
		models.ChatResponse{Content: "Sorry, I cannot teleport."},
	)
	a, _ := New(Options{Model: model, Tools: []Tool{newStockStub("n/a")}})

	result, err := a.Run(context.Background(), "s1", memory.NewHistory(), "Teleport me")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Steps) != 1 {
		t.Fatalf("expected one step, got %d", len(result.Steps))
	}
	obs := result.Steps[0].Observation
	if !strings.Contains(obs, "unknown tool") || !strings.Contains(obs, "get_stock_price") {
		t.Fatalf("unexpected observation: %q", obs)
	}
	if result.Output != "Sorry, I cannot teleport." {
		t.Fatalf("loop did not continue to final answer: %q", result.Output)
	}
}

func TestRunUnparseableArgumentsYieldObservation(t *testing.T) {
	stock := newStockStub("n/a")
	model := models.NewScriptedLLM(
		models.ChatResponse{ToolCalls: []models.ToolCall{{
			ID: "call-1", Name: "get_stock_price", Arguments: `{"symbol": `,
		}}},
		models.ChatResponse{Content: "Let me try again."},
	)
	a, _ := New(Options{Model: model, Tools: []Tool{stock}})

	result, err := a.Run(context.Background(), "s1", memory.NewHistory(), "price of AAPL")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stock.calls != 0 {
		t.Fatal("tool must not be invoked on unparseable arguments")
	}
	if !strings.Contains(result.Steps[0].Observation, "could not parse arguments") {
		t.Fatalf("unexpected observation: %q", result.Steps[0].Observation)
	}
}

func TestRunToolErrorBecomesObservation(t *testing.T) {
	failing := &stubTool{
		spec: ToolSpec{Name: "wikipedia", Description: "Encyclopedia lookup."},
		err:  errors.New("connection refused"),
	}
	model := models.NewScriptedLLM(
		models.ChatResponse{ToolCalls: []models.ToolCall{{
			ID: "call-1", Name: "wikipedia", Arguments: `{"query":"Go"}`,
		}}},
		models.ChatResponse{Content: "I could not reach the encyclopedia."},
	)
	a, _ := New(Options{Model: model, Tools: []Tool{failing}})

	result, err := a.Run(context.Background(), "s1", memory.NewHistory(), "Tell me about Go")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.HasPrefix(result.Steps[0].Observation, "Error") {
		t.Fatalf("expected Error-prefixed observation, got %q", result.Steps[0].Observation)
	}
}

func TestRunRoundCapProducesDegradedAnswer(t *testing.T) {
	stock := newStockStub("The current price of AAPL is 189.12 USD.")
	loop := models.ChatResponse{ToolCalls: []models.ToolCall{{
		ID: "call", Name: "get_stock_price", Arguments: `{"symbol":"AAPL"}`,
	}}}
	model := models.NewScriptedLLM(loop, loop, loop)
	a, _ := New(Options{Model: model, Tools: []Tool{stock}, MaxRounds: 3})

	result, err := a.Run(context.Background(), "s1", memory.NewHistory(), "price?")
	if err != nil {
		t.Fatalf("round cap must not surface as an error: %v", err)
	}
	if len(result.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(result.Steps))
	}
	if !strings.Contains(result.Output, "3 tool rounds") {
		t.Fatalf("degraded answer should mention the cap, got %q", result.Output)
	}
}

func TestRunModelFailurePropagates(t *testing.T) {
	a, _ := New(Options{Model: failingModel{}})
	if _, err := a.Run(context.Background(), "s1", memory.NewHistory(), "hi"); err == nil {
		t.Fatal("expected model failure to propagate")
	}
}

type failingModel struct{}

func (failingModel) Chat(context.Context, models.ChatRequest) (models.ChatResponse, error) {
	return models.ChatResponse{}, errors.New("boom")
}

func TestRunSendsRecentHistoryWindow(t *testing.T) {
	model := models.NewScriptedLLM(models.ChatResponse{Content: "ok"})
	a, _ := New(Options{Model: model, ContextTurns: 2})

	history := memory.NewHistory()
	for _, turn := range []string{"one", "two", "three"} {
		history.AddHuman("q " + turn)
		history.AddAI("a " + turn)
	}

	if _, err := a.Run(context.Background(), "s1", history, "latest"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	sent := model.Requests[0].Messages
	// 2 turns of history plus the new user message.
	if len(sent) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(sent))
	}
	if sent[0].Content != "q two" {
		t.Fatalf("window opened at wrong turn: %q", sent[0].Content)
	}
	if sent[len(sent)-1].Content != "latest" {
		t.Fatalf("new user message must come last, got %q", sent[len(sent)-1].Content)
	}
}

func TestRunExecutesBatchedCallsInOrder(t *testing.T) {
	stock := newStockStub("price text")
	wiki := &stubTool{
		spec:     ToolSpec{Name: "wikipedia", Description: "Encyclopedia lookup."},
		response: "wiki text",
	}
	model := models.NewScriptedLLM(
		models.ChatResponse{ToolCalls: []models.ToolCall{
			{ID: "c1", Name: "wikipedia", Arguments: `{"query":"Apple"}`},
			{ID: "c2", Name: "get_stock_price", Arguments: `{"symbol":"AAPL"}`},
		}},
		models.ChatResponse{Content: "done"},
	)
	a, _ := New(Options{Model: model, Tools: []Tool{stock, wiki}})

	result, err := a.Run(context.Background(), "s1", memory.NewHistory(), "Apple overview and price")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(result.Steps))
	}
	if result.Steps[0].Call.Name != "wikipedia" || result.Steps[1].Call.Name != "get_stock_price" {
		t.Fatalf("batch executed out of order: %+v", result.Steps)
	}
}

func TestParseArguments(t *testing.T) {
	args, err := parseArguments("")
	if err != nil || len(args) != 0 {
		t.Fatalf("empty arguments should produce empty map, got %v, %v", args, err)
	}
	args, err = parseArguments(`{"symbol":"AAPL"}`)
	if err != nil || args["symbol"] != "AAPL" {
		t.Fatalf("unexpected parse result: %v, %v", args, err)
	}
	if _, err = parseArguments(`not json`); err == nil {
		t.Fatal("expected error for malformed arguments")
	}
}
