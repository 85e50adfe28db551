package memory

import (
	"fmt"
	"strings"
	"time"
)

// Role tags a conversation entry.
type Role string

const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
)

// Message is one immutable conversation entry.
type Message struct {
	Role    Role
	Content string
	At      time.Time
}

// History is the append-only conversation log for a single session. It is
// exclusively owned by that session and must not be shared across sessions;
// entries are never mutated after being appended. The log itself is kept for
// the whole session lifetime; callers that feed a model should select a
// recent window with LastTurns rather than truncating the log.
type History struct {
	entries []Message
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// AddHuman appends a human message.
func (h *History) AddHuman(content string) {
	h.append(RoleHuman, content)
}

// AddAI appends an assistant message.
func (h *History) AddAI(content string) {
	h.append(RoleAI, content)
}

func (h *History) append(role Role, content string) {
	h.entries = append(h.entries, Message{Role: role, Content: content, At: time.Now()})
}

// Len reports the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Messages returns a copy of the full log in chronological order.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.entries))
	copy(out, h.entries)
	return out
}

// LastTurns returns a copy of the most recent k human/AI turns (up to 2k
// entries), aligned so the window never starts mid-turn.
func (h *History) LastTurns(k int) []Message {
	if k <= 0 || len(h.entries) == 0 {
		return nil
	}
	start := len(h.entries) - 2*k
	if start < 0 {
		start = 0
	}
	// Do not open the window on an AI reply whose human half was cut off.
	if h.entries[start].Role == RoleAI {
		start++
	}
	out := make([]Message, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out
}

// String renders the log for debugging.
func (h *History) String() string {
	var sb strings.Builder
	for i, msg := range h.entries {
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, msg.Role, msg.Content))
	}
	return sb.String()
}
