package models

import "context"

// Role identifies who produced a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a single tool invocation requested by the model. Arguments is
// the raw JSON payload exactly as the provider returned it; callers decide
// how to parse it and how to recover when it does not parse.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDefinition describes one callable tool to the model. Parameters is a
// JSON-schema style object ("type"/"properties"/"required").
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ChatMessage is one entry of the conversation sent to the model.
// Assistant messages may carry ToolCalls; tool messages carry the result of
// the call identified by ToolCallID/ToolName.
type ChatMessage struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
}

// ChatRequest is a single model round: system instruction, ordered history,
// and the tools the model may request.
type ChatRequest struct {
	System   string
	Messages []ChatMessage
	Tools    []ToolDefinition
}

// ChatResponse is either a final answer (Content, no ToolCalls) or a batch
// of tool invocation requests to execute before the next round.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// ChatModel is the language-model boundary. Implementations translate the
// request into one provider API call and normalize the reply.
type ChatModel interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}
