package agent

import (
	"context"

	"github.com/quantbrief/go-insight-agent/pkg/models"
)

// ToolSpec describes a tool to the language model. Name must be unique
// within a catalog; InputSchema is a JSON-schema style object mapping
// parameter names to their type and description. Specs are immutable once
// registered.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolRequest carries the arguments of one tool invocation.
type ToolRequest struct {
	SessionID string
	Arguments map[string]any
}

// ToolResponse is the text observation a tool hands back to the model.
// Adapters encode their own failures as descriptive Content prefixed with
// "Error" instead of returning an error, so the model can read the failure
// and react to it.
type ToolResponse struct {
	Content  string
	Metadata map[string]string
}

// Tool is the uniform adapter contract: describe yourself, then perform a
// single synchronous invocation.
type Tool interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error)
}

// ToolCatalog is the static registry of tools presented to the model.
type ToolCatalog interface {
	Register(tool Tool) error
	Lookup(name string) (Tool, ToolSpec, bool)
	Specs() []ToolSpec
	Tools() []Tool
}

// Step records one executed tool call and the observation fed back to the
// model.
type Step struct {
	Call        models.ToolCall
	Observation string
}

// RunResult is the outcome of a single agent turn.
type RunResult struct {
	Output string
	Steps  []Step
}
