package planexec

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/reinhart/personaAgent/internal/assistant"
	"github.com/reinhart/personaAgent/internal/errorsx"
)

const endOfPlan = "<END_OF_PLAN>"

// PlannerSystemPrompt asks for a numbered plan ending with an answer step
const PlannerSystemPrompt = "Let's first understand the problem and devise a plan to solve the problem." +
	" Please output the plan starting with the header 'Plan:' and then followed by a numbered list of steps." +
	" Please make the plan the minimum number of steps required to accurately complete the task." +
	" If the task is a question, the final step should almost always be 'Given the above steps taken," +
	" please respond to the users original question'." +
	" At the end of your plan, say '" + endOfPlan + "'"

var stepLine = regexp.MustCompile(`^\s*[*_]*(?:Step\s*)?\d+[*_]*\s*[.):][*_]*\s*(.+)$`)

// LLMPlanner asks a model for the plan
type LLMPlanner struct {
	Provider     assistant.LLMProvider
	SystemPrompt string
}

func (p *LLMPlanner) Plan(ctx context.Context, goal string) ([]Step, error) {
	system := p.SystemPrompt
	if system == "" {
		system = PlannerSystemPrompt
	}
	reply, err := p.Provider.Chat(ctx, []assistant.Message{
		{Role: assistant.RoleSystem, Content: system},
		{Role: assistant.RoleUser, Content: goal},
	}, nil)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonModelUnavailable)
	}
	if reply == nil {
		return nil, errorsx.New(errorsx.ReasonModelUnavailable, "planner model returned no message")
	}
	steps := ParsePlan(reply.Content)
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyPlan, reply.Content)
	}
	return steps, nil
}

// ParsePlan extracts numbered steps, ignoring anything after the end marker
func ParsePlan(text string) []Step {
	if i := strings.Index(text, endOfPlan); i >= 0 {
		text = text[:i]
	}
	var steps []Step
	for _, line := range strings.Split(text, "\n") {
		m := stepLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		desc := strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), "*"))
		if desc == "" {
			continue
		}
		steps = append(steps, Step{Index: len(steps) + 1, Description: desc})
	}
	return steps
}
