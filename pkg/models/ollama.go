package models

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// ---------------------------- Ollama -----------------------------------------

type OllamaLLM struct {
	Client *ollama.Client
	Model  string
}

func NewOllamaLLM(model string) (*OllamaLLM, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://localhost:11434"
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}

	return &OllamaLLM{Client: ollama.NewClient(u, httpClient), Model: model}, nil
}

func (o *OllamaLLM) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	messages := make([]ollama.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: req.System})
	}
	for _, msg := range req.Messages {
		messages = append(messages, ollamaMessage(msg))
	}

	tools, err := ollamaTools(req.Tools)
	if err != nil {
		return ChatResponse{}, err
	}

	stream := false
	chatReq := &ollama.ChatRequest{
		Model:    o.Model,
		Messages: messages,
		Tools:    tools,
		Stream:   &stream,
	}

	var (
		text strings.Builder
		out  ChatResponse
	)
	if err := o.Client.Chat(ctx, chatReq, func(resp ollama.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		for _, tc := range resp.Message.ToolCalls {
			args, _ := json.Marshal(tc.Function.Arguments)
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        tc.Function.Name,
				Name:      tc.Function.Name,
				Arguments: string(args),
			})
		}
		return nil
	}); err != nil {
		return ChatResponse{}, err
	}

	out.Content = text.String()
	return out, nil
}

func ollamaMessage(msg ChatMessage) ollama.Message {
	switch msg.Role {
	case RoleTool:
		return ollama.Message{Role: "tool", Content: msg.Content}
	case RoleAssistant:
		return ollama.Message{Role: "assistant", Content: msg.Content}
	default:
		return ollama.Message{Role: "user", Content: msg.Content}
	}
}

// ollamaTools builds the typed tool list through a JSON round-trip so the
// schema maps stay the single source of truth.
func ollamaTools(defs []ToolDefinition) ([]ollama.Tool, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	payload := make([]map[string]any, 0, len(defs))
	for _, def := range defs {
		payload = append(payload, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        def.Name,
				"description": def.Description,
				"parameters":  def.Parameters,
			},
		})
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode ollama tools: %w", err)
	}
	var tools []ollama.Tool
	if err := json.Unmarshal(raw, &tools); err != nil {
		return nil, fmt.Errorf("decode ollama tools: %w", err)
	}
	return tools, nil
}

var _ ChatModel = (*OllamaLLM)(nil)
