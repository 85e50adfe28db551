package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quantbrief/go-insight-agent/pkg/memory"
	"github.com/quantbrief/go-insight-agent/pkg/models"
)

const defaultSystemPrompt = "You are a helpful AI assistant. You have access to several tools to help you answer questions. " +
	"If a tool fails, please report the error and try to answer as best as you can or ask for clarification. " +
	"Always check the stock price using the get_stock_price tool if asked about stocks."

// DefaultMaxRounds bounds the decide/invoke/observe cycle of a single turn.
// When the cap is hit the turn ends with a degraded answer instead of an
// error.
const DefaultMaxRounds = 8

// DefaultContextTurns is how many recent history turns are sent to the
// model each round.
const DefaultContextTurns = 8

// Agent drives the tool-calling loop: it asks the model for either a final
// answer or tool invocations, executes requested tools through the catalog,
// and feeds their observations back until the model answers.
type Agent struct {
	model        models.ChatModel
	systemPrompt string
	maxRounds    int
	contextTurns int
	toolCatalog  ToolCatalog
	logger       zerolog.Logger
}

// Options configure a new Agent.
type Options struct {
	Model        models.ChatModel
	SystemPrompt string
	MaxRounds    int
	ContextTurns int
	Tools        []Tool
	ToolCatalog  ToolCatalog
	Logger       *zerolog.Logger
}

// New creates an Agent with the provided options.
func New(opts Options) (*Agent, error) {
	if opts.Model == nil {
		return nil, errors.New("agent requires a language model")
	}

	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	contextTurns := opts.ContextTurns
	if contextTurns <= 0 {
		contextTurns = DefaultContextTurns
	}

	systemPrompt := opts.SystemPrompt
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}

	toolCatalog := opts.ToolCatalog
	tolerantTools := false
	if toolCatalog == nil {
		toolCatalog = NewStaticToolCatalog(nil)
		tolerantTools = true
	}
	for _, tool := range opts.Tools {
		if tool == nil {
			continue
		}
		if err := toolCatalog.Register(tool); err != nil {
			if tolerantTools {
				continue
			}
			return nil, err
		}
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Agent{
		model:        opts.Model,
		systemPrompt: systemPrompt,
		maxRounds:    maxRounds,
		contextTurns: contextTurns,
		toolCatalog:  toolCatalog,
		logger:       logger,
	}, nil
}

// Run executes one conversational turn. It does not modify history; the
// caller appends the (human, AI) pair after a successful turn.
func (a *Agent) Run(ctx context.Context, sessionID string, history *memory.History, userInput string) (RunResult, error) {
	if strings.TrimSpace(userInput) == "" {
		return RunResult{}, errors.New("user input is empty")
	}

	messages := a.seedMessages(history, userInput)
	tools := toolDefinitions(a.toolCatalog.Specs())

	var result RunResult
	for round := 1; round <= a.maxRounds; round++ {
		a.logger.Debug().Str("session", sessionID).Int("round", round).Msg("model call")

		resp, err := a.model.Chat(ctx, models.ChatRequest{
			System:   a.systemPrompt,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return RunResult{}, fmt.Errorf("model call (round %d): %w", round, err)
		}

		if len(resp.ToolCalls) == 0 {
			result.Output = resp.Content
			return result, nil
		}

		messages = append(messages, models.ChatMessage{
			Role:      models.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		// Execute the batch in the order the model emitted it, observing
		// each result before the next model call.
		for _, call := range resp.ToolCalls {
			observation := a.observe(ctx, sessionID, call)
			result.Steps = append(result.Steps, Step{Call: call, Observation: observation})
			messages = append(messages, models.ChatMessage{
				Role:       models.RoleTool,
				Content:    observation,
				ToolCallID: call.ID,
				ToolName:   call.Name,
			})
		}
	}

	a.logger.Warn().Str("session", sessionID).Int("max_rounds", a.maxRounds).Msg("round cap exceeded")
	result.Output = a.degradedAnswer(result.Steps)
	return result, nil
}

func (a *Agent) seedMessages(history *memory.History, userInput string) []models.ChatMessage {
	var messages []models.ChatMessage
	if history != nil {
		for _, msg := range history.LastTurns(a.contextTurns) {
			role := models.RoleUser
			if msg.Role == memory.RoleAI {
				role = models.RoleAssistant
			}
			messages = append(messages, models.ChatMessage{Role: role, Content: msg.Content})
		}
	}
	return append(messages, models.ChatMessage{Role: models.RoleUser, Content: userInput})
}

// observe resolves and executes one requested tool call, converting every
// failure into a text observation the model can react to.
func (a *Agent) observe(ctx context.Context, sessionID string, call models.ToolCall) string {
	tool, spec, ok := a.toolCatalog.Lookup(call.Name)
	if !ok {
		a.logger.Warn().Str("tool", call.Name).Msg("unknown tool requested")
		return fmt.Sprintf("Error: unknown tool %q. Available tools: %s.", call.Name, strings.Join(specNames(a.toolCatalog.Specs()), ", "))
	}

	args, err := parseArguments(call.Arguments)
	if err != nil {
		a.logger.Warn().Str("tool", spec.Name).Err(err).Msg("unparseable tool arguments")
		return fmt.Sprintf("Error: could not parse arguments for tool %q: %v. Send a JSON object matching the tool's input schema.", spec.Name, err)
	}

	resp, err := tool.Invoke(ctx, ToolRequest{SessionID: sessionID, Arguments: args})
	if err != nil {
		// Adapters are expected to encode failures as text themselves;
		// this is the backstop for ones that do not.
		a.logger.Warn().Str("tool", spec.Name).Err(err).Msg("tool invocation failed")
		return fmt.Sprintf("Error: tool %s failed: %v", spec.Name, err)
	}

	a.logger.Debug().Str("tool", spec.Name).Msg("tool invoked")
	return resp.Content
}

func (a *Agent) degradedAnswer(steps []Step) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "I could not reach a final answer within %d tool rounds.", a.maxRounds)
	if len(steps) > 0 {
		sb.WriteString(" Here is what the tools reported:\n")
		for _, step := range steps {
			fmt.Fprintf(&sb, "- %s: %s\n", step.Call.Name, step.Observation)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ToolSpecs returns the registered tool specifications in catalog order.
func (a *Agent) ToolSpecs() []ToolSpec {
	return a.toolCatalog.Specs()
}

func parseArguments(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	return args, nil
}

func toolDefinitions(specs []ToolSpec) []models.ToolDefinition {
	defs := make([]models.ToolDefinition, 0, len(specs))
	for _, spec := range specs {
		defs = append(defs, models.ToolDefinition{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  spec.InputSchema,
		})
	}
	return defs
}

func specNames(specs []ToolSpec) []string {
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		names = append(names, spec.Name)
	}
	return names
}
