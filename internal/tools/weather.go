package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reinhart/personaAgent/internal/assistant"
)

// WeatherTool reports canned weather for a city
type WeatherTool struct{}

type WeatherArgs struct {
	City string `json:"city"`
}

func (t *WeatherTool) Definition() assistant.ToolDefinition {
	return assistant.ToolDefinition{
		Name:        "get_weather",
		Description: "Return the current weather for the requested city.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"city": {"type": "string", "description": "Name of the city, e.g. Paris"}
			},
			"required": ["city"],
			"additionalProperties": false
		}`),
	}
}

func (t *WeatherTool) Execute(ctx context.Context, args string) (string, error) {
	var a WeatherArgs
	if err := assistant.ParseArgs(args, &a); err != nil {
		return "", fmt.Errorf("malformed arguments: %w", err)
	}
	city := strings.TrimSpace(a.City)
	if city == "" {
		return "", fmt.Errorf("city is required")
	}
	return Weather(city), nil
}

// Weather is the forecast every city gets
func Weather(city string) string {
	return fmt.Sprintf("The temperature in %s is 72°F and raining!", city)
}

// TravelSystemPrompt asks the model to check the weather before advising on clothing
const TravelSystemPrompt = "You help travelers prepare for their trips. Whenever someone asks about" +
	" what to wear in a city, ALWAYS call the `get_weather` tool for that" +
	" city before answering. Provide a friendly, concise recommendation" +
	" afterward."
