package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/require"
)

const toolCallCompletion = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-5-nano",
	"choices": [{
		"index": 0,
		"finish_reason": "tool_calls",
		"message": {
			"role": "assistant",
			"content": "",
			"tool_calls": [{
				"id": "call_1",
				"type": "function",
				"function": {"name": "get_weather", "arguments": "{\"city\":\"Paris\"}"}
			}]
		}
	}]
}`

var weatherDef = ToolDefinition{
	Name:        "get_weather",
	Description: "weather",
	Parameters:  json.RawMessage(`{"type":"object","properties":{"city":{"type":"string","description":"city name"}},"required":["city"]}`),
}

var roundTripHistory = []Message{
	{Role: RoleSystem, Content: "sys"},
	{Role: RoleUser, Content: "Paris?"},
	{Role: RoleAssistant, ToolCalls: []ToolCall{
		{ID: "a", Type: "function", Function: FunctionCall{Name: "get_weather", Arguments: `{"city":"Paris"}`}},
		{ID: "b", Type: "function", Function: FunctionCall{Name: "get_weather", Arguments: `{"city":"Lyon"}`}},
	}},
	{Role: RoleTool, ToolCallID: "a", Name: "get_weather", Content: "rain"},
	{Role: RoleTool, ToolCallID: "b", Name: "get_weather", Content: "Error: tool get_weather failed: boom", Failed: true},
}

type capturedRequest struct {
	Path string
	Body map[string]any
}

func completionServer(t *testing.T, status int, body string, requests *[]capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var decoded map[string]any
		_ = json.NewDecoder(r.Body).Decode(&decoded)
		*requests = append(*requests, capturedRequest{Path: r.URL.Path, Body: decoded})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIProviderChat(t *testing.T) {
	var requests []capturedRequest
	srv := completionServer(t, http.StatusOK, toolCallCompletion, &requests)
	p := NewOpenAIProvider("sk-test", "gpt-5-nano", srv.URL+"/v1")

	msg, err := p.Chat(context.Background(), roundTripHistory, []ToolDefinition{weatherDef})
	require.NoError(t, err)
	require.Equal(t, RoleAssistant, msg.Role)
	require.Len(t, msg.ToolCalls, 1)
	require.Equal(t, "call_1", msg.ToolCalls[0].ID)
	require.Equal(t, `{"city":"Paris"}`, msg.ToolCalls[0].Function.Arguments)

	require.Len(t, requests, 1)
	require.Equal(t, "/v1/chat/completions", requests[0].Path)
	sent := requests[0].Body["messages"].([]any)
	require.Len(t, sent, 5)
	toolMsg := sent[3].(map[string]any)
	require.Equal(t, "tool", toolMsg["role"])
	require.Equal(t, "a", toolMsg["tool_call_id"])
	tools := requests[0].Body["tools"].([]any)
	require.Len(t, tools, 1)
}

func TestOpenAIProviderDoesNotRetry(t *testing.T) {
	var requests []capturedRequest
	srv := completionServer(t, http.StatusInternalServerError, `{"error":{"message":"overloaded","type":"server_error"}}`, &requests)
	p := NewOpenAIProvider("sk-test", "", srv.URL+"/v1")

	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
	require.Len(t, requests, 1)
}

func TestOpenAISDKProviderChat(t *testing.T) {
	var requests []capturedRequest
	srv := completionServer(t, http.StatusOK, toolCallCompletion, &requests)
	p := NewOpenAISDKProvider("sk-test", "gpt-5-nano", srv.URL)

	msg, err := p.Chat(context.Background(), roundTripHistory, []ToolDefinition{weatherDef})
	require.NoError(t, err)
	require.Len(t, msg.ToolCalls, 1)
	require.Equal(t, "get_weather", msg.ToolCalls[0].Function.Name)

	require.Len(t, requests, 1)
	require.Equal(t, "/chat/completions", requests[0].Path)
	sent := requests[0].Body["messages"].([]any)
	require.Len(t, sent, 5)
	asst := sent[2].(map[string]any)
	require.Equal(t, "assistant", asst["role"])
	require.Len(t, asst["tool_calls"].([]any), 2)
}

func TestOpenAISDKProviderDoesNotRetry(t *testing.T) {
	var requests []capturedRequest
	srv := completionServer(t, http.StatusInternalServerError, `{"error":{"message":"overloaded"}}`, &requests)
	p := NewOpenAISDKProvider("sk-test", "", srv.URL)

	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
	require.Len(t, requests, 1)
}

func TestToAnthropicMessagesMergesToolResults(t *testing.T) {
	system, msgs := toAnthropicMessages(roundTripHistory)
	require.Equal(t, "sys", system)
	require.Len(t, msgs, 3)

	require.Equal(t, anthropic.RoleUser, msgs[0].Role)
	require.Equal(t, anthropic.RoleAssistant, msgs[1].Role)
	require.Len(t, msgs[1].Content, 2, "empty assistant text is dropped, two tool_use blocks remain")
	for _, c := range msgs[1].Content {
		require.Equal(t, anthropic.MessagesContentTypeToolUse, c.Type)
	}

	require.Equal(t, anthropic.RoleUser, msgs[2].Role)
	require.Len(t, msgs[2].Content, 2)
	for _, c := range msgs[2].Content {
		require.Equal(t, anthropic.MessagesContentTypeToolResult, c.Type)
	}

	tools := toAnthropicTools([]ToolDefinition{weatherDef})
	require.Len(t, tools, 1)
	require.Equal(t, "get_weather", tools[0].Name)
}

func TestToGeminiContents(t *testing.T) {
	system, history := toGeminiContents(roundTripHistory)
	require.NotNil(t, system)
	require.Equal(t, []genai.Part{genai.Text("sys")}, system.Parts)

	require.Len(t, history, 3)
	require.Equal(t, "user", history[0].Role)
	require.Equal(t, "model", history[1].Role)
	require.Len(t, history[1].Parts, 2)
	require.Equal(t, genai.FunctionCall{Name: "get_weather", Args: map[string]any{"city": "Paris"}}, history[1].Parts[0])

	require.Equal(t, "function", history[2].Role)
	require.Equal(t, []genai.Part{
		genai.FunctionResponse{Name: "get_weather", Response: map[string]any{"result": "rain"}},
		genai.FunctionResponse{Name: "get_weather", Response: map[string]any{"error": "Error: tool get_weather failed: boom"}},
	}, history[2].Parts)
}

func TestToGeminiSchema(t *testing.T) {
	schema := toGeminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city":  map[string]any{"type": "string", "description": "city name"},
			"unit":  map[string]any{"type": "string", "enum": []any{"C", "F"}},
			"days":  map[string]any{"type": "integer"},
			"tags":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"exact": map[string]any{"type": "boolean"},
		},
		"required": []any{"city"},
	})
	require.Equal(t, genai.TypeObject, schema.Type)
	require.Equal(t, []string{"city"}, schema.Required)
	require.Equal(t, genai.TypeString, schema.Properties["city"].Type)
	require.Equal(t, "city name", schema.Properties["city"].Description)
	require.Equal(t, []string{"C", "F"}, schema.Properties["unit"].Enum)
	require.Equal(t, "enum", schema.Properties["unit"].Format)
	require.Equal(t, genai.TypeInteger, schema.Properties["days"].Type)
	require.Equal(t, genai.TypeArray, schema.Properties["tags"].Type)
	require.Equal(t, genai.TypeString, schema.Properties["tags"].Items.Type)
	require.Equal(t, genai.TypeBoolean, schema.Properties["exact"].Type)

	tools := toGeminiTools([]ToolDefinition{weatherDef, {Name: "noargs"}})
	require.Len(t, tools, 1)
	require.Len(t, tools[0].FunctionDeclarations, 2)
	require.NotNil(t, tools[0].FunctionDeclarations[0].Parameters)
	require.Nil(t, tools[0].FunctionDeclarations[1].Parameters)
}

func TestGeminiParseResponseMintsCallIDs(t *testing.T) {
	n := 0
	p := &GeminiProvider{newID: func() string {
		n++
		return []string{"id-1", "id-2"}[n-1]
	}}
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{
			genai.Text("checking "),
			genai.FunctionCall{Name: "get_weather", Args: map[string]any{"city": "Paris"}},
			genai.FunctionCall{Name: "get_weather", Args: map[string]any{"city": "Rome"}},
		}},
	}}}

	msg, err := p.parseResponse(resp)
	require.NoError(t, err)
	require.Equal(t, "checking ", msg.Content)
	require.Len(t, msg.ToolCalls, 2)
	require.Equal(t, "id-1", msg.ToolCalls[0].ID)
	require.Equal(t, "id-2", msg.ToolCalls[1].ID)
	require.JSONEq(t, `{"city":"Rome"}`, msg.ToolCalls[1].Function.Arguments)

	_, err = p.parseResponse(&genai.GenerateContentResponse{})
	require.Error(t, err)
	require.NotEqual(t, newCallID(), newCallID())
}
