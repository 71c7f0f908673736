package assistant

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAISDKProvider implements LLMProvider on the official OpenAI SDK
type OpenAISDKProvider struct {
	client openai.Client
	model  string
}

// NewOpenAISDKProvider creates a provider on the official SDK. The SDK's
// built-in retries are disabled; failures surface to the caller.
func NewOpenAISDKProvider(apiKey, model, baseURL string) *OpenAISDKProvider {
	if model == "" {
		model = "gpt-5-mini"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(newHTTPClient()),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAISDKProvider{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (p *OpenAISDKProvider) Name() string {
	return "openai-sdk"
}

func (p *OpenAISDKProvider) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*Message, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: toSDKMessages(messages),
		Tools:    toSDKTools(tools),
	})
	if err != nil {
		return nil, fmt.Errorf("openai-sdk completion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai-sdk returned no choices")
	}

	msg := resp.Choices[0].Message
	result := &Message{
		Role:    RoleAssistant,
		Content: msg.Content,
	}
	for _, tc := range msg.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return result, nil
}

func toSDKMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case RoleTool:
			content := msg.Content
			if content == "" {
				content = "{}"
			}
			out = append(out, openai.ToolMessage(content, msg.ToolCallID))
		case RoleAssistant:
			asst := openai.ChatCompletionAssistantMessageParam{}
			if msg.Content != "" {
				asst.Content.OfString = openai.String(msg.Content)
			}
			for _, tc := range msg.ToolCalls {
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Function.Name,
							Arguments: tc.Function.Arguments,
						},
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func toSDKTools(tools []ToolDefinition) []openai.ChatCompletionToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  openai.FunctionParameters(t.SchemaMap()),
		}))
	}
	return out
}
