package planexec

import (
	"context"
	"fmt"
	"strings"

	"github.com/reinhart/personaAgent/internal/assistant"
)

// ManagerSystemPrompt frames the executor as the manager delegating to persona tools
const ManagerSystemPrompt = `You are the MANAGER AGENT.

Your job:
1. Understand the user request.
2. Break the task into steps.
3. Decide which agent (tool) should execute each step.
4. Combine the results.
5. Return the final answer.

Only call tools when needed.`

// LoopExecutor runs each step as its own tool calling turn
type LoopExecutor struct {
	Loop         *assistant.ToolCallLoop
	SystemPrompt string
}

func (e *LoopExecutor) Execute(ctx context.Context, goal string, step Step, previous []StepResult) (StepResult, error) {
	system := e.SystemPrompt
	if system == "" {
		system = ManagerSystemPrompt
	}
	res, err := e.Loop.Run(ctx, system, StepPrompt(goal, step, previous))
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{Step: step, Response: res.Answer, Turn: res}, nil
}

// StepPrompt gives the executor the goal, the finished steps and the current objective
func StepPrompt(goal string, step Step, previous []StepResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Overall goal: %s\n\n", goal)
	if len(previous) > 0 {
		sb.WriteString("Previous steps:\n")
		for _, p := range previous {
			fmt.Fprintf(&sb, "Step %d: %s\nResponse: %s\n\n", p.Step.Index, p.Step.Description, p.Response)
		}
	}
	fmt.Fprintf(&sb, "Current objective: %s", step.Description)
	return sb.String()
}
