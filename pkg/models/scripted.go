package models

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ScriptedLLM replays a fixed sequence of responses. It is useful for local
// demos and tests that need deterministic tool-call decisions without API
// calls.
type ScriptedLLM struct {
	mu        sync.Mutex
	responses []ChatResponse
	Requests  []ChatRequest
	Fallback  string
}

func NewScriptedLLM(responses ...ChatResponse) *ScriptedLLM {
	return &ScriptedLLM{responses: responses, Fallback: "Scripted response:"}
}

func (s *ScriptedLLM) Chat(_ context.Context, req ChatRequest) (ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests = append(s.Requests, req)
	if len(s.responses) > 0 {
		next := s.responses[0]
		s.responses = s.responses[1:]
		return next, nil
	}

	// Out of script: echo the last non-empty message so the conversation
	// still terminates.
	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if content := strings.TrimSpace(req.Messages[i].Content); content != "" {
			last = content
			break
		}
	}
	if last == "" {
		last = "<empty prompt>"
	}
	return ChatResponse{Content: fmt.Sprintf("%s %s", s.Fallback, last)}, nil
}

var _ ChatModel = (*ScriptedLLM)(nil)
