package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	agent "github.com/quantbrief/go-insight-agent"
	"github.com/quantbrief/go-insight-agent/pkg/memory"
	"github.com/quantbrief/go-insight-agent/pkg/models"
)

// ModelLoader constructs the language model instance for the agent.
type ModelLoader func(ctx context.Context) (models.ChatModel, error)

// Option configures runtime construction.
type Option func(*config)

type config struct {
	systemPrompt string
	maxRounds    int
	contextTurns int
	model        ModelLoader
	tools        []agent.Tool
	logger       *zerolog.Logger
}

func (c *config) validate() error {
	if c.model == nil {
		return errors.New("runtime requires a model loader")
	}
	return nil
}

// WithModel sets the loader responsible for constructing the chat model.
func WithModel(loader ModelLoader) Option {
	return func(c *config) {
		c.model = loader
	}
}

// WithSystemPrompt replaces the default assistant system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *config) {
		c.systemPrompt = prompt
	}
}

// WithMaxRounds overrides the per-turn tool round cap.
func WithMaxRounds(rounds int) Option {
	return func(c *config) {
		c.maxRounds = rounds
	}
}

// WithContextTurns overrides how many recent turns are sent to the model.
func WithContextTurns(turns int) Option {
	return func(c *config) {
		c.contextTurns = turns
	}
}

// WithTools registers one or more tools with the runtime.
func WithTools(tools ...agent.Tool) Option {
	return func(c *config) {
		for _, tool := range tools {
			if tool == nil {
				continue
			}
			c.tools = append(c.tools, tool)
		}
	}
}

// WithLogger attaches a logger to the runtime and its agent.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = &logger
	}
}

// Runtime wires together the model, the tool catalog and the session
// registry into a cohesive chat back-end.
type Runtime struct {
	agent    *agent.Agent
	logger   zerolog.Logger
	sessions *sessionManager
}

// New builds a runtime based on the supplied configuration options. A
// missing or unloadable model is the one setup failure that aborts start:
// no turn can proceed without it.
func New(ctx context.Context, opts ...Option) (*Runtime, error) {
	cfg := &config{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	model, err := cfg.model(ctx)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	agentInstance, err := agent.New(agent.Options{
		Model:        model,
		SystemPrompt: cfg.systemPrompt,
		MaxRounds:    cfg.maxRounds,
		ContextTurns: cfg.contextTurns,
		Tools:        append([]agent.Tool(nil), cfg.tools...),
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise agent: %w", err)
	}

	logger := zerolog.Nop()
	if cfg.logger != nil {
		logger = *cfg.logger
	}

	rt := &Runtime{agent: agentInstance, logger: logger}
	rt.sessions = newSessionManager(rt)
	return rt, nil
}

// Agent exposes the underlying agent loop.
func (rt *Runtime) Agent() *agent.Agent {
	return rt.agent
}

// ToolSpecs returns the tool catalog presented to the model.
func (rt *Runtime) ToolSpecs() []agent.ToolSpec {
	return rt.agent.ToolSpecs()
}

// NewSession provisions an interactive session with a fresh, empty history.
// If id is empty a unique identifier is generated.
func (rt *Runtime) NewSession(id string) *Session {
	return rt.sessions.newSession(id)
}

// GetSession retrieves an active session by its ID.
func (rt *Runtime) GetSession(id string) (*Session, error) {
	return rt.sessions.getSession(strings.TrimSpace(id))
}

// RemoveSession disposes a session; its history is discarded with it.
func (rt *Runtime) RemoveSession(id string) {
	rt.sessions.removeSession(strings.TrimSpace(id))
}

// ActiveSessions returns a copy of all active session IDs.
func (rt *Runtime) ActiveSessions() []string {
	return rt.sessions.activeIDs()
}

// Session encapsulates the conversational context for a single user. It
// exclusively owns its history; turns execute sequentially.
type Session struct {
	runtime *Runtime
	id      string
	history *memory.History
}

// ID returns the unique identifier associated with the session.
func (s *Session) ID() string { return s.id }

// History exposes the session's conversation log.
func (s *Session) History() *memory.History { return s.history }

// Respond executes one conversational turn: it runs the agent loop with
// the session history, then appends the (human, AI) pair to the log.
func (s *Session) Respond(ctx context.Context, userInput string) (agent.RunResult, error) {
	if s.runtime == nil {
		return agent.RunResult{}, errors.New("session runtime is nil")
	}

	result, err := s.runtime.agent.Run(ctx, s.id, s.history, userInput)
	if err != nil {
		return agent.RunResult{}, err
	}

	s.history.AddHuman(userInput)
	s.history.AddAI(result.Output)
	s.runtime.logger.Debug().
		Str("session", s.id).
		Int("steps", len(result.Steps)).
		Int("history_len", s.history.Len()).
		Msg("turn complete")
	return result, nil
}
