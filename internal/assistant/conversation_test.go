package assistant

import (
	"testing"

	"github.com/reinhart/personaAgent/internal/errorsx"
	"github.com/stretchr/testify/require"
)

func TestConversationValidate(t *testing.T) {
	asst := func(ids ...string) Message {
		m := Message{Role: RoleAssistant}
		for _, id := range ids {
			m.ToolCalls = append(m.ToolCalls, call(id, "echo", "{}"))
		}
		return m
	}
	tool := func(id string) Message { return Message{Role: RoleTool, ToolCallID: id, Name: "echo"} }
	user := Message{Role: RoleUser, Content: "q"}

	tests := []struct {
		name    string
		msgs    []Message
		wantErr bool
	}{
		{"empty", nil, false},
		{"plain chat", []Message{{Role: RoleSystem}, user, asst()}, false},
		{"answered calls", []Message{user, asst("a", "b"), tool("a"), tool("b"), asst()}, false},
		{"answered out of order", []Message{user, asst("a", "b"), tool("b"), tool("a"), asst()}, false},
		{"tool without assistant", []Message{user, tool("a")}, true},
		{"fabricated id", []Message{user, asst("a"), tool("z")}, true},
		{"answer after user turn", []Message{user, asst("a"), user, tool("a")}, true},
		{"unanswered before next turn", []Message{user, asst("a"), asst()}, true},
		{"unanswered at end", []Message{user, asst("a")}, true},
		{"answered twice", []Message{user, asst("a"), tool("a"), tool("a")}, true},
		{"id from older assistant", []Message{user, asst("a"), tool("a"), asst("b"), tool("a")}, true},
		{"unknown role", []Message{{Role: "robot"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Conversation{Messages: tt.msgs}.Validate()
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errorsx.HasReason(err, errorsx.ReasonInvalidSession))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConversationAppendCopies(t *testing.T) {
	base := NewConversation("sys")
	a := base.Append(Message{Role: RoleUser, Content: "a"})
	b := base.Append(Message{Role: RoleUser, Content: "b"})
	require.Equal(t, 1, base.Len())
	require.Equal(t, "a", a.Messages[1].Content)
	require.Equal(t, "b", b.Messages[1].Content)
	require.Equal(t, "sys", a.SystemPrompt())
	require.Empty(t, NewConversation("").SystemPrompt())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r, err := NewToolRegistry(echoTool("b"), echoTool("a"))
	require.NoError(t, err)
	require.Error(t, r.Register(echoTool("a")))
	require.Error(t, r.Register(&FuncTool{}))
	require.Equal(t, 2, r.Len())

	defs := r.Definitions()
	require.Equal(t, "a", defs[0].Name)
	require.Equal(t, "b", defs[1].Name)

	_, err = NewToolRegistry(echoTool("x"), echoTool("x"))
	require.Error(t, err)
}

func TestSchemaMapDefaults(t *testing.T) {
	require.Equal(t, map[string]any{"type": "object", "properties": map[string]any{}}, ToolDefinition{}.SchemaMap())

	def := ToolDefinition{Parameters: []byte(`{"type":"object","properties":{"city":{"type":"string"}}}`)}
	props := def.SchemaMap()["properties"].(map[string]any)
	require.Contains(t, props, "city")
}

func TestTranscriptFormatsFailuresAndTruncation(t *testing.T) {
	res := &Result{
		Question: "q",
		Trace: []Message{
			{Role: RoleAssistant, Content: "let me check", ToolCalls: []ToolCall{call("1", "echo", `{"text":"a","n":2}`)}},
			{Role: RoleTool, ToolCallID: "1", Name: "echo", Content: "echo:a"},
			{Role: RoleAssistant, Content: "final", ToolCalls: []ToolCall{call("2", "echo", `{}`)}},
		},
	}
	require.Equal(t, []string{
		"User: q",
		"Assistant (planning): let me check",
		"Tool `echo` called with args {'n': 2, 'text': 'a'} -> echo:a",
		"Assistant: final",
	}, res.Transcript())
}
