package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/reinhart/personaAgent/internal/logger"
)

// StatusUpdate represents a real-time update from the agent
type StatusUpdate struct {
	Message string
}

// Agent runs chat turns for a UI. Conversations are passed in and returned,
// the agent keeps none of its own.
type Agent struct {
	loop    *ToolCallLoop
	system  string
	updates chan StatusUpdate // Channel for sending updates to UI
}

// NewAgent creates a new agent instance
func NewAgent(provider LLMProvider, registry *ToolRegistry, systemPrompt string, opts ...LoopOption) *Agent {
	agent := &Agent{
		system:  systemPrompt,
		updates: make(chan StatusUpdate, 10), // Buffered channel
	}
	opts = append(opts, WithObserver(agent.observe))
	agent.loop = NewToolCallLoop(provider, registry, opts...)
	return agent
}

// Updates returns the channel for status updates
func (a *Agent) Updates() <-chan StatusUpdate {
	return a.updates
}

// NewConversation starts a conversation with the agent's system prompt
func (a *Agent) NewConversation() Conversation {
	return NewConversation(a.system)
}

// sendUpdate sends a status update non-blocking
func (a *Agent) sendUpdate(msg string) {
	select {
	case a.updates <- StatusUpdate{Message: msg}:
	default:
		// Drop if channel full or no listener
	}
}

func (a *Agent) observe(ev Event) {
	switch {
	case ev.State == StateAwaitingModel:
		a.sendUpdate(fmt.Sprintf("Thinking (Round %d)...", ev.Round+1))
	case ev.State == StateExecutingTools && ev.Err != nil:
		a.sendUpdate(fmt.Sprintf("Error in %s: %v", ev.Tool, ev.Err))
	case ev.State == StateExecutingTools:
		a.sendUpdate(fmt.Sprintf("Calling %s...", ev.Tool))
	case ev.State == StateAnswered:
		a.sendUpdate("Done")
	}
}

// ProcessMessage answers input within conv and returns the reply together
// with the extended conversation. On error conv is returned unchanged.
func (a *Agent) ProcessMessage(ctx context.Context, conv Conversation, input string) (string, Conversation, error) {
	logger.Info("Processing user input: %s", input)
	a.sendUpdate("Analysing request...")

	if conv.Len() == 0 {
		conv = a.NewConversation()
	}

	res, err := a.loop.Continue(ctx, conv, input)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			a.sendUpdate("Request timed out")
			return "", conv, fmt.Errorf("LLM request timed out after waiting too long. The API may be slow or unavailable: %w", err)
		case errors.Is(ctx.Err(), context.Canceled):
			a.sendUpdate("Request cancelled")
			return "", conv, fmt.Errorf("request was cancelled: %w", err)
		}
		a.sendUpdate("Error communicating with LLM")
		return "", conv, err
	}
	if res.Truncated {
		logger.Info("Tool round limit reached, returning last reply")
	}
	logger.Info("Final response received")
	return res.Answer, res.Conversation, nil
}
