package agent

import (
	"fmt"
	"strings"
	"sync"
)

// StaticToolCatalog is the default in-memory ToolCatalog. It is static for
// the process lifetime: tools are registered once at construction and the
// catalog order is insertion order.
type StaticToolCatalog struct {
	mu      sync.RWMutex
	entries map[string]catalogEntry
	order   []string
}

type catalogEntry struct {
	tool Tool
	spec ToolSpec
}

// NewStaticToolCatalog constructs a catalog from the provided tools.
// Invalid entries are skipped.
func NewStaticToolCatalog(tools []Tool) *StaticToolCatalog {
	catalog := &StaticToolCatalog{
		entries: make(map[string]catalogEntry),
	}
	for _, tool := range tools {
		_ = catalog.Register(tool)
	}
	return catalog
}

// Register adds a tool to the catalog using a lower-cased key. Duplicate
// names return an error.
func (c *StaticToolCatalog) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	spec := tool.Spec()
	key := strings.ToLower(strings.TrimSpace(spec.Name))
	if key == "" {
		return fmt.Errorf("tool name is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		return fmt.Errorf("tool %s already registered", spec.Name)
	}
	c.entries[key] = catalogEntry{tool: tool, spec: spec}
	c.order = append(c.order, key)
	return nil
}

// Lookup retrieves a tool by name, case-insensitively.
func (c *StaticToolCatalog) Lookup(name string) (Tool, ToolSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ToolSpec{}, false
	}
	return entry.tool, entry.spec, true
}

// Specs returns the registered tool specs in registration order.
func (c *StaticToolCatalog) Specs() []ToolSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()

	specs := make([]ToolSpec, 0, len(c.order))
	for _, key := range c.order {
		specs = append(specs, c.entries[key].spec)
	}
	return specs
}

// Tools returns the registered tools in registration order.
func (c *StaticToolCatalog) Tools() []Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tools := make([]Tool, 0, len(c.order))
	for _, key := range c.order {
		tools = append(tools, c.entries[key].tool)
	}
	return tools
}
