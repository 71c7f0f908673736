package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Tool defines the interface for a tool
type Tool interface {
	Definition() ToolDefinition
	Execute(ctx context.Context, args string) (string, error)
}

// ToolRegistry manages the available tools
type ToolRegistry struct {
	tools map[string]Tool
}

// NewToolRegistry creates a new tool registry
func NewToolRegistry(tools ...Tool) (*ToolRegistry, error) {
	r := &ToolRegistry{
		tools: make(map[string]Tool),
	}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool to the registry. Names must be unique.
func (r *ToolRegistry) Register(t Tool) error {
	def := t.Definition()
	if def.Name == "" {
		return fmt.Errorf("tool has no name")
	}
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool %s already registered", def.Name)
	}
	r.tools[def.Name] = t
	return nil
}

// Get retrieves a tool by name
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Len returns the number of registered tools
func (r *ToolRegistry) Len() int {
	return len(r.tools)
}

// Definitions returns the definitions of all registered tools, sorted by name
func (r *ToolRegistry) Definitions() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Helper to parse args
func ParseArgs(args string, v interface{}) error {
	if args == "" {
		args = "{}"
	}
	return json.Unmarshal([]byte(args), v)
}

// FuncTool adapts a plain function over decoded arguments into a Tool
type FuncTool struct {
	Def ToolDefinition
	Fn  func(ctx context.Context, args map[string]any) (string, error)
}

func (t *FuncTool) Definition() ToolDefinition {
	return t.Def
}

func (t *FuncTool) Execute(ctx context.Context, args string) (string, error) {
	decoded := map[string]any{}
	if err := ParseArgs(args, &decoded); err != nil {
		return "", fmt.Errorf("malformed arguments: %w", err)
	}
	if err := checkRequired(t.Def, decoded); err != nil {
		return "", err
	}
	return t.Fn(ctx, decoded)
}

// checkRequired enforces the "required" list of an object schema
func checkRequired(def ToolDefinition, args map[string]any) error {
	var schema struct {
		Required []string `json:"required"`
	}
	if len(def.Parameters) == 0 {
		return nil
	}
	if err := json.Unmarshal(def.Parameters, &schema); err != nil {
		return nil
	}
	for _, name := range schema.Required {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("missing required argument %q", name)
		}
	}
	return nil
}
