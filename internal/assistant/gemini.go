package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GeminiProvider implements LLMProvider using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
	model  string
	newID  func() string
}

// NewGeminiProvider creates a new Gemini provider instance
func NewGeminiProvider(ctx context.Context, apiKey string, model string) (*GeminiProvider, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiProvider{
		client: client,
		model:  model,
		newID:  newCallID,
	}, nil
}

// Gemini issues no call ids, so one is minted per call to keep tool results correlated
func newCallID() string {
	return "call_" + uuid.NewString()
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Close releases the underlying client
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func (p *GeminiProvider) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*Message, error) {
	model := p.client.GenerativeModel(p.model)
	model.Tools = toGeminiTools(tools)

	system, history := toGeminiContents(messages)
	if system != nil {
		model.SystemInstruction = system
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("gemini: nothing to send")
	}

	// The last turn is sent, everything before it is replayed as history
	cs := model.StartChat()
	last := history[len(history)-1]
	cs.History = history[:len(history)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini completion error: %w", err)
	}
	return p.parseResponse(resp)
}

func (p *GeminiProvider) parseResponse(resp *genai.GenerateContentResponse) (*Message, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned")
	}
	cand := resp.Candidates[0]

	result := &Message{
		Role: RoleAssistant,
	}
	if cand.Content == nil {
		return result, nil
	}

	for _, part := range cand.Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			result.Content += string(v)
		case genai.FunctionCall:
			argsBytes, err := json.Marshal(v.Args)
			if err != nil {
				return nil, fmt.Errorf("gemini function call %s: %w", v.Name, err)
			}
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				ID:   p.newID(),
				Type: "function",
				Function: FunctionCall{
					Name:      v.Name,
					Arguments: string(argsBytes),
				},
			})
		}
	}

	return result, nil
}

// toGeminiContents converts the conversation to Gemini turns. System
// prompts become the system instruction and consecutive tool results
// are merged into a single function turn.
func toGeminiContents(messages []Message) (*genai.Content, []*genai.Content) {
	var system *genai.Content
	var history []*genai.Content

	for _, msg := range messages {
		if msg.Role == RoleSystem {
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, genai.Text(msg.Content))
			continue
		}

		if msg.Role == RoleTool {
			var response map[string]any
			// Try to parse JSON, otherwise wrap string
			if err := json.Unmarshal([]byte(msg.Content), &response); err != nil {
				key := "result"
				if msg.Failed {
					key = "error"
				}
				response = map[string]any{key: msg.Content}
			}
			part := genai.FunctionResponse{Name: msg.Name, Response: response}
			if n := len(history); n > 0 && history[n-1].Role == "function" {
				history[n-1].Parts = append(history[n-1].Parts, part)
				continue
			}
			history = append(history, &genai.Content{Role: "function", Parts: []genai.Part{part}})
			continue
		}

		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}

		var parts []genai.Part
		if msg.Content != "" {
			parts = append(parts, genai.Text(msg.Content))
		}
		for _, tc := range msg.ToolCalls {
			args, err := tc.Args()
			if err != nil {
				args = map[string]any{}
			}
			parts = append(parts, genai.FunctionCall{
				Name: tc.Function.Name,
				Args: args,
			})
		}
		if len(parts) == 0 {
			parts = append(parts, genai.Text(""))
		}

		history = append(history, &genai.Content{
			Role:  role,
			Parts: parts,
		})
	}

	return system, history
}

func toGeminiTools(tools []ToolDefinition) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	funcDecls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decl := &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
		}
		// Gemini rejects object schemas without properties
		if schema := toGeminiSchema(t.SchemaMap()); schema != nil && len(schema.Properties) > 0 {
			decl.Parameters = schema
		}
		funcDecls = append(funcDecls, decl)
	}
	return []*genai.Tool{{FunctionDeclarations: funcDecls}}
}

// toGeminiSchema maps the subset of JSON Schema that tool parameters use onto genai.Schema
func toGeminiSchema(node map[string]any) *genai.Schema {
	if node == nil {
		return nil
	}
	s := &genai.Schema{}
	if d, ok := node["description"].(string); ok {
		s.Description = d
	}

	typ, _ := node["type"].(string)
	switch typ {
	case "string":
		s.Type = genai.TypeString
	case "number":
		s.Type = genai.TypeNumber
	case "integer":
		s.Type = genai.TypeInteger
	case "boolean":
		s.Type = genai.TypeBoolean
	case "array":
		s.Type = genai.TypeArray
		if items, ok := node["items"].(map[string]any); ok {
			s.Items = toGeminiSchema(items)
		}
	default:
		s.Type = genai.TypeObject
		if props, ok := node["properties"].(map[string]any); ok && len(props) > 0 {
			s.Properties = make(map[string]*genai.Schema, len(props))
			for name, raw := range props {
				if child, ok := raw.(map[string]any); ok {
					s.Properties[name] = toGeminiSchema(child)
				}
			}
		}
		if req, ok := node["required"].([]any); ok {
			for _, r := range req {
				if name, ok := r.(string); ok {
					s.Required = append(s.Required, name)
				}
			}
		}
	}

	if enum, ok := node["enum"].([]any); ok {
		for _, e := range enum {
			if v, ok := e.(string); ok {
				s.Enum = append(s.Enum, v)
			}
		}
		if len(s.Enum) > 0 && s.Type == genai.TypeString {
			s.Format = "enum"
		}
	}
	return s
}
