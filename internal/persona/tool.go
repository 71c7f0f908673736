package persona

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/reinhart/personaAgent/internal/assistant"
)

// Invocation records one use of a persona tool
type Invocation struct {
	Input  string
	Output string
}

// Tool exposes a persona chain as a tool taking a single text input
type Tool struct {
	name        string
	description string
	chain       *Chain

	mu    sync.Mutex
	calls []Invocation
}

type toolArgs struct {
	Input string `json:"input"`
}

// NewTool wraps chain as the tool name
func NewTool(name, description string, chain *Chain) *Tool {
	return &Tool{name: name, description: description, chain: chain}
}

func (t *Tool) Definition() assistant.ToolDefinition {
	return assistant.ToolDefinition{
		Name:        t.name,
		Description: t.description,
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"input": {"type": "string", "description": "The text or instruction to hand to this agent"}
			},
			"required": ["input"],
			"additionalProperties": false
		}`),
	}
}

func (t *Tool) Execute(ctx context.Context, args string) (string, error) {
	var a toolArgs
	if err := assistant.ParseArgs(args, &a); err != nil {
		return "", fmt.Errorf("malformed arguments: %w", err)
	}
	if strings.TrimSpace(a.Input) == "" {
		return "", fmt.Errorf("input is required")
	}
	out, err := t.chain.Run(ctx, map[string]string{"input": a.Input})
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	t.calls = append(t.calls, Invocation{Input: a.Input, Output: out})
	t.mu.Unlock()
	return out, nil
}

// Invocations returns the successful calls so far
func (t *Tool) Invocations() []Invocation {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Invocation(nil), t.calls...)
}

// Toolset is the supervisor's writer, censor and SEO personas
type Toolset struct {
	BlobWriter *Tool
	Censor     *Tool
	SEO        *Tool
}

// NewToolset wires the personas to one provider
func NewToolset(provider assistant.LLMProvider) *Toolset {
	return &Toolset{
		BlobWriter: NewTool("blob_writer", "Writes large raw text blobs from a prompt.",
			&Chain{Name: "blob_writer", Provider: provider, Prompt: BlobWriterPrompt}),
		Censor: NewTool("censor_agent", "Cleans and censors unsafe or inappropriate text.",
			&Chain{Name: "censor_agent", Provider: provider, Prompt: CensorPrompt}),
		SEO: NewTool("seo_agent", "Analyzes text for SEO score and improvements.",
			&Chain{Name: "seo_agent", Provider: provider, Prompt: SEOExpertPrompt}),
	}
}

// Registry returns a tool registry holding the three personas
func (ts *Toolset) Registry() (*assistant.ToolRegistry, error) {
	return assistant.NewToolRegistry(ts.BlobWriter, ts.Censor, ts.SEO)
}
