package assistant

import (
	"context"
	"encoding/json"
	"fmt"
)

// Role represents the role of a message sender
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a single message in the conversation
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"` // Tool name on tool responses
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // Used when Role is Tool to link back to the call
	Failed     bool       `json:"failed,omitempty"`       // Tool response describes an error
}

// ToolCall represents a request from the LLM to execute a tool
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall represents the details of a function execution request
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON object of arguments
}

// Args decodes the call arguments. An empty argument string is an empty object.
func (tc ToolCall) Args() (map[string]any, error) {
	args := map[string]any{}
	if tc.Function.Arguments == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
		return nil, fmt.Errorf("malformed arguments for %s: %w", tc.Function.Name, err)
	}
	return args, nil
}

// ToolDefinition defines a tool that can be used by the LLM
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema describing the parameters
}

// SchemaMap decodes Parameters into a generic map, defaulting to an empty object schema
func (d ToolDefinition) SchemaMap() map[string]any {
	params := map[string]any{}
	if len(d.Parameters) > 0 {
		_ = json.Unmarshal(d.Parameters, &params)
	}
	if _, ok := params["type"]; !ok {
		params["type"] = "object"
	}
	if _, ok := params["properties"]; !ok {
		params["properties"] = map[string]any{}
	}
	return params
}

// LLMProvider defines the interface for interacting with LLM backends
type LLMProvider interface {
	// Chat sends messages to the LLM and returns the response, potentially including tool calls
	Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*Message, error)
}

// ProviderName returns the vendor name of a provider, when it has one
func ProviderName(p LLMProvider) string {
	if n, ok := p.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}
