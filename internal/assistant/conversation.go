package assistant

import (
	"fmt"

	"github.com/reinhart/personaAgent/internal/errorsx"
)

// Conversation is an ordered message log owned by a single caller.
// Methods never modify the receiver's backing array in place, so a value
// handed to one turn is not affected by another.
type Conversation struct {
	Messages []Message `json:"messages"`
}

// NewConversation starts a conversation with an optional system prompt
func NewConversation(systemPrompt string) Conversation {
	var c Conversation
	if systemPrompt != "" {
		c.Messages = []Message{{Role: RoleSystem, Content: systemPrompt}}
	}
	return c
}

// Append returns a new conversation with msgs added at the end
func (c Conversation) Append(msgs ...Message) Conversation {
	out := make([]Message, 0, len(c.Messages)+len(msgs))
	out = append(out, c.Messages...)
	out = append(out, msgs...)
	return Conversation{Messages: out}
}

// Len returns the number of messages
func (c Conversation) Len() int {
	return len(c.Messages)
}

// SystemPrompt returns the content of the leading system message, if any
func (c Conversation) SystemPrompt() string {
	if len(c.Messages) > 0 && c.Messages[0].Role == RoleSystem {
		return c.Messages[0].Content
	}
	return ""
}

// Validate checks that every tool message answers a call issued by the
// assistant message that opened its tool-result block, that no id is
// answered twice, and that every call is answered before the next
// non-tool message.
func (c Conversation) Validate() error {
	var pending []string
	answered := map[string]bool{}
	lastAssistant := -1

	closeBlock := func(at int) error {
		for _, id := range pending {
			if !answered[id] {
				return errorsx.New(errorsx.ReasonInvalidSession,
					"message %d: tool call %q from message %d has no result", at, id, lastAssistant)
			}
		}
		pending = nil
		answered = map[string]bool{}
		return nil
	}

	for i, m := range c.Messages {
		switch m.Role {
		case RoleTool:
			if lastAssistant < 0 {
				return errorsx.New(errorsx.ReasonInvalidSession, "message %d: tool result without a preceding assistant message", i)
			}
			found := false
			for _, id := range pending {
				if id == m.ToolCallID {
					found = true
					break
				}
			}
			if !found {
				return errorsx.New(errorsx.ReasonInvalidSession, "message %d: tool result for unknown call %q", i, m.ToolCallID)
			}
			if answered[m.ToolCallID] {
				return errorsx.New(errorsx.ReasonInvalidSession, "message %d: call %q answered twice", i, m.ToolCallID)
			}
			answered[m.ToolCallID] = true
		case RoleAssistant, RoleUser, RoleSystem:
			if err := closeBlock(i); err != nil {
				return err
			}
			if m.Role == RoleAssistant {
				lastAssistant = i
				for _, tc := range m.ToolCalls {
					pending = append(pending, tc.ID)
				}
			} else {
				lastAssistant = -1
			}
		default:
			return errorsx.New(errorsx.ReasonInvalidSession, "message %d: unknown role %q", i, m.Role)
		}
	}
	if len(pending) > 0 {
		for _, id := range pending {
			if !answered[id] {
				return errorsx.New(errorsx.ReasonInvalidSession, "tool call %q has no result", id)
			}
		}
	}
	return nil
}

func (m Message) String() string {
	switch m.Role {
	case RoleTool:
		return fmt.Sprintf("tool[%s %s]: %s", m.Name, m.ToolCallID, m.Content)
	case RoleAssistant:
		if len(m.ToolCalls) > 0 {
			return fmt.Sprintf("assistant (%d tool calls): %s", len(m.ToolCalls), m.Content)
		}
	}
	return fmt.Sprintf("%s: %s", m.Role, m.Content)
}
