package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

// AnthropicProvider implements LLMProvider using the Anthropic API
type AnthropicProvider struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicProvider creates a new Anthropic provider instance
func NewAnthropicProvider(apiKey string, model string) *AnthropicProvider {
	if model == "" {
		model = string(anthropic.ModelClaude3Dot5Sonnet20240620)
	}

	return &AnthropicProvider{
		client:    anthropic.NewClient(apiKey, anthropic.WithHTTPClient(newHTTPClient())),
		model:     model,
		maxTokens: 4096,
	}
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

func (p *AnthropicProvider) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*Message, error) {
	systemPrompt, anthropicMessages := toAnthropicMessages(messages)

	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(p.model),
		Messages:  anthropicMessages,
		Tools:     toAnthropicTools(tools),
		MaxTokens: p.maxTokens,
		System:    systemPrompt,
	}

	resp, err := p.client.CreateMessages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("anthropic completion error: %w", err)
	}

	result := &Message{
		Role: RoleAssistant,
	}

	for _, content := range resp.Content {
		switch content.Type {
		case anthropic.MessagesContentTypeText:
			if content.Text != nil {
				result.Content += *content.Text
			}
		case anthropic.MessagesContentTypeToolUse:
			args := "{}"
			if content.MessageContentToolUse != nil && len(content.Input) > 0 {
				args = string(content.Input)
			}
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				ID:   content.ID,
				Type: "function",
				Function: FunctionCall{
					Name:      content.Name,
					Arguments: args,
				},
			})
		}
	}

	return result, nil
}

// toAnthropicMessages pulls system prompts out (Anthropic takes them
// separately) and folds consecutive tool results into one user turn.
func toAnthropicMessages(messages []Message) (string, []anthropic.Message) {
	var system []string
	var out []anthropic.Message

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
			continue

		case RoleTool:
			block := anthropic.NewToolResultMessageContent(msg.ToolCallID, msg.Content, msg.Failed)
			if n := len(out); n > 0 && out[n-1].Role == anthropic.RoleUser && isToolResultTurn(out[n-1]) {
				out[n-1].Content = append(out[n-1].Content, block)
				continue
			}
			out = append(out, anthropic.Message{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{block},
			})
			continue
		}

		role := anthropic.RoleUser
		if msg.Role == RoleAssistant {
			role = anthropic.RoleAssistant
		}

		var content []anthropic.MessageContent
		// Empty text blocks are rejected by the API
		if msg.Content != "" {
			content = append(content, anthropic.NewTextMessageContent(msg.Content))
		}
		for _, tc := range msg.ToolCalls {
			input := json.RawMessage(tc.Function.Arguments)
			if !json.Valid(input) {
				input = json.RawMessage("{}")
			}
			content = append(content, anthropic.NewToolUseMessageContent(tc.ID, tc.Function.Name, input))
		}
		if len(content) == 0 {
			content = append(content, anthropic.NewTextMessageContent("(empty)"))
		}

		out = append(out, anthropic.Message{
			Role:    role,
			Content: content,
		})
	}

	return strings.Join(system, "\n"), out
}

func isToolResultTurn(m anthropic.Message) bool {
	for _, c := range m.Content {
		if c.Type != anthropic.MessagesContentTypeToolResult {
			return false
		}
	}
	return len(m.Content) > 0
}

func toAnthropicTools(tools []ToolDefinition) []anthropic.ToolDefinition {
	var anthropicTools []anthropic.ToolDefinition
	for _, t := range tools {
		anthropicTools = append(anthropicTools, anthropic.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.SchemaMap(),
		})
	}
	return anthropicTools
}
