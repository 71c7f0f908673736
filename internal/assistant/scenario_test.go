package assistant_test

import (
	"context"
	"strings"
	"testing"

	"github.com/reinhart/personaAgent/internal/assistant"
	"github.com/reinhart/personaAgent/internal/tools"
	"github.com/stretchr/testify/require"
)

// travelModel asks for the weather once, then advises based on the tool result
type travelModel struct {
	requests int
}

func (m *travelModel) Chat(ctx context.Context, messages []assistant.Message, defs []assistant.ToolDefinition) (*assistant.Message, error) {
	m.requests++
	last := messages[len(messages)-1]

	if last.Role == assistant.RoleTool {
		advice := "Pack a warm coat."
		if strings.Contains(last.Content, "raining") {
			advice = "Bring a raincoat, it will be wet in Paris."
		}
		return &assistant.Message{Role: assistant.RoleAssistant, Content: advice}, nil
	}

	for _, d := range defs {
		if d.Name == "get_weather" && strings.Contains(last.Content, "Paris") {
			return &assistant.Message{
				Role: assistant.RoleAssistant,
				ToolCalls: []assistant.ToolCall{{
					ID:       "call_paris",
					Type:     "function",
					Function: assistant.FunctionCall{Name: "get_weather", Arguments: `{"city":"Paris"}`},
				}},
			}, nil
		}
	}
	return &assistant.Message{Role: assistant.RoleAssistant, Content: "2+2 is 4."}, nil
}

func weatherLoop(t *testing.T, model assistant.LLMProvider) *assistant.ToolCallLoop {
	t.Helper()
	registry, err := assistant.NewToolRegistry(&tools.WeatherTool{})
	require.NoError(t, err)
	return assistant.NewToolCallLoop(model, registry)
}

func TestParisRaincoatRoundTrip(t *testing.T) {
	model := &travelModel{}
	res, err := weatherLoop(t, model).Run(context.Background(),
		"You are a travel assistant; always call get_weather before advising on clothing.",
		"I'm going to Paris tomorrow, coat or raincoat?")
	require.NoError(t, err)
	require.Equal(t, 2, model.requests)

	require.Len(t, res.Trace, 3)
	first := res.Trace[0]
	require.Equal(t, assistant.RoleAssistant, first.Role)
	require.Len(t, first.ToolCalls, 1)
	require.Equal(t, "get_weather", first.ToolCalls[0].Function.Name)
	args, err := first.ToolCalls[0].Args()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"city": "Paris"}, args)

	toolMsg := res.Trace[1]
	require.Equal(t, assistant.RoleTool, toolMsg.Role)
	require.Equal(t, "call_paris", toolMsg.ToolCallID)
	require.Contains(t, toolMsg.Content, "The temperature in Paris is 72°F and raining!")

	require.Equal(t, assistant.RoleAssistant, res.Trace[2].Role)
	require.Contains(t, res.Answer, "raincoat")

	require.Equal(t, []string{
		"User: I'm going to Paris tomorrow, coat or raincoat?",
		"Assistant (planning): " + assistant.PlanningPlaceholder,
		"Tool `get_weather` called with args {'city': 'Paris'} -> The temperature in Paris is 72°F and raining!",
		"Assistant: Bring a raincoat, it will be wet in Paris.",
	}, res.Transcript())
}

func TestNoToolNeeded(t *testing.T) {
	model := &travelModel{}
	res, err := weatherLoop(t, model).Run(context.Background(), "You are a helpful assistant.", "What is 2+2?")
	require.NoError(t, err)
	require.Equal(t, 1, model.requests)
	require.Empty(t, res.ToolMessages())
	require.Equal(t, "2+2 is 4.", res.Answer)
	require.Equal(t, []string{"User: What is 2+2?", "Assistant: 2+2 is 4."}, res.Transcript())
}

func TestAgentThreadsConversation(t *testing.T) {
	model := &travelModel{}
	registry, err := assistant.NewToolRegistry(&tools.WeatherTool{})
	require.NoError(t, err)
	agent := assistant.NewAgent(model, registry, tools.TravelSystemPrompt)

	reply, conv, err := agent.ProcessMessage(context.Background(), assistant.Conversation{}, "Heading to Paris, what should I wear?")
	require.NoError(t, err)
	require.Contains(t, reply, "raincoat")
	require.Equal(t, tools.TravelSystemPrompt, conv.SystemPrompt())
	require.Equal(t, 5, conv.Len())
	require.NoError(t, conv.Validate())

	reply, conv2, err := agent.ProcessMessage(context.Background(), conv, "And what is 2+2?")
	require.NoError(t, err)
	require.Equal(t, "2+2 is 4.", reply)
	require.Equal(t, 7, conv2.Len())
	require.Equal(t, 5, conv.Len(), "earlier value is unchanged")

	var updates []string
	for len(agent.Updates()) > 0 {
		updates = append(updates, (<-agent.Updates()).Message)
	}
	require.NotEmpty(t, updates)
}
