package assistant

import (
	"fmt"
	"sort"
	"strings"
)

// PlanningPlaceholder stands in for an empty assistant message that only requested tools
const PlanningPlaceholder = "[planning via tool call]"

// Transcript renders the turn as console lines
func (r *Result) Transcript() []string {
	lines := []string{"User: " + r.Question}
	calls := map[string]ToolCall{}

	for i, m := range r.Trace {
		switch m.Role {
		case RoleAssistant:
			last := i == len(r.Trace)-1
			if len(m.ToolCalls) > 0 && !last {
				text := m.Content
				if strings.TrimSpace(text) == "" {
					text = PlanningPlaceholder
				}
				lines = append(lines, "Assistant (planning): "+text)
				for _, tc := range m.ToolCalls {
					calls[tc.ID] = tc
				}
				continue
			}
			lines = append(lines, "Assistant: "+m.Content)
		case RoleTool:
			args := "{}"
			if tc, ok := calls[m.ToolCallID]; ok {
				args = formatArgs(tc)
			}
			lines = append(lines, fmt.Sprintf("Tool `%s` called with args %s -> %s", m.Name, args, m.Content))
		}
	}
	return lines
}

// formatArgs renders arguments with sorted keys so transcripts are stable
func formatArgs(tc ToolCall) string {
	args, err := tc.Args()
	if err != nil {
		return tc.Function.Arguments
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("'%s': %s", k, formatValue(args[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	return fmt.Sprintf("%v", v)
}
