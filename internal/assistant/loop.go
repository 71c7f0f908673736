package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reinhart/personaAgent/internal/errorsx"
	"github.com/reinhart/personaAgent/internal/logger"
)

// DefaultMaxRounds sends tool results back to the model once and treats the
// following reply as final.
const DefaultMaxRounds = 1

// State is the position of a turn in the tool calling state machine
type State int

const (
	StateStart State = iota
	StateAwaitingModel
	StateExecutingTools
	StateAnswered
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateAwaitingModel:
		return "awaiting_model"
	case StateExecutingTools:
		return "executing_tools"
	case StateAnswered:
		return "answered"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event is reported to the observer on every state transition and tool call
type Event struct {
	State State
	Round int
	Tool  string // set while executing a tool
	Err   error  // set when a tool failed
}

// LoopOption configures a ToolCallLoop
type LoopOption func(*ToolCallLoop)

// WithMaxRounds bounds the number of tool execution rounds in one turn
func WithMaxRounds(n int) LoopOption {
	return func(l *ToolCallLoop) {
		if n > 0 {
			l.maxRounds = n
		}
	}
}

// WithRequestTimeout wraps every model call in its own deadline
func WithRequestTimeout(d time.Duration) LoopOption {
	return func(l *ToolCallLoop) {
		l.timeout = d
	}
}

// WithObserver registers a callback for turn progress
func WithObserver(fn func(Event)) LoopOption {
	return func(l *ToolCallLoop) {
		l.observe = fn
	}
}

// ToolCallLoop drives one conversational turn that may call registered tools
// before producing a final answer. It holds no conversation state, so one
// loop may serve many independent turns.
type ToolCallLoop struct {
	provider  LLMProvider
	registry  *ToolRegistry
	maxRounds int
	timeout   time.Duration
	observe   func(Event)
}

// NewToolCallLoop creates a loop over provider and the tools in registry
func NewToolCallLoop(provider LLMProvider, registry *ToolRegistry, opts ...LoopOption) *ToolCallLoop {
	if registry == nil {
		registry, _ = NewToolRegistry()
	}
	l := &ToolCallLoop{
		provider:  provider,
		registry:  registry,
		maxRounds: DefaultMaxRounds,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MaxRounds reports the configured round limit
func (l *ToolCallLoop) MaxRounds() int {
	return l.maxRounds
}

// Result is the outcome of one turn
type Result struct {
	Question string
	Answer   string
	// Trace holds the assistant and tool messages produced during the turn, in order
	Trace        []Message
	Conversation Conversation
	Rounds       int
	// Truncated is set when the final reply still requested tools after the round limit
	Truncated bool
}

// ToolMessages returns the tool responses in the trace
func (r *Result) ToolMessages() []Message {
	var out []Message
	for _, m := range r.Trace {
		if m.Role == RoleTool {
			out = append(out, m)
		}
	}
	return out
}

// Run starts a fresh conversation from systemPrompt and answers question
func (l *ToolCallLoop) Run(ctx context.Context, systemPrompt, question string) (*Result, error) {
	return l.Continue(ctx, NewConversation(systemPrompt), question)
}

// Continue answers question on top of an existing conversation. The
// conversation passed in is never modified; the extended one is in the result.
func (l *ToolCallLoop) Continue(ctx context.Context, conv Conversation, question string) (*Result, error) {
	conv = conv.Append(Message{Role: RoleUser, Content: question})
	res := &Result{Question: question}
	defs := l.registry.Definitions()

	for round := 0; ; round++ {
		l.emit(Event{State: StateAwaitingModel, Round: round})
		reply, err := l.invoke(ctx, conv.Messages, defs)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round+1, err)
		}
		logger.Debug("Model reply in round %d (content len: %d, tool calls: %d)", round+1, len(reply.Content), len(reply.ToolCalls))

		if len(reply.ToolCalls) == 0 {
			res.Trace = append(res.Trace, reply)
			conv = conv.Append(reply)
			return l.finish(res, conv, reply.Content), nil
		}

		if round >= l.maxRounds {
			// Unanswered calls are kept out of the conversation so it can be replayed.
			logger.Warn("Round limit %d reached, ignoring %d further tool calls", l.maxRounds, len(reply.ToolCalls))
			res.Trace = append(res.Trace, reply)
			final := reply
			final.ToolCalls = nil
			conv = conv.Append(final)
			res.Truncated = true
			return l.finish(res, conv, reply.Content), nil
		}

		res.Trace = append(res.Trace, reply)
		conv = conv.Append(reply)
		res.Rounds++

		for _, tc := range reply.ToolCalls {
			out := l.execute(ctx, round, tc)
			res.Trace = append(res.Trace, out)
			conv = conv.Append(out)
		}
	}
}

func (l *ToolCallLoop) finish(res *Result, conv Conversation, answer string) *Result {
	res.Answer = answer
	res.Conversation = conv
	l.emit(Event{State: StateAnswered, Round: res.Rounds})
	return res
}

func (l *ToolCallLoop) invoke(ctx context.Context, messages []Message, defs []ToolDefinition) (Message, error) {
	callCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	resp, err := l.provider.Chat(callCtx, messages, defs)
	if err != nil {
		logger.Info("LLM Error: %v", err)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("model request timed out: %w", err)
		}
		return Message{}, errorsx.Wrap(err, errorsx.ReasonModelUnavailable)
	}
	if resp == nil {
		return Message{}, errorsx.New(errorsx.ReasonModelUnavailable, "%s returned no message", ProviderName(l.provider))
	}
	reply := *resp
	reply.Role = RoleAssistant
	return reply, nil
}

// execute runs one tool call and always yields a tool message answering it
func (l *ToolCallLoop) execute(ctx context.Context, round int, tc ToolCall) Message {
	name := tc.Function.Name
	l.emit(Event{State: StateExecutingTools, Round: round, Tool: name})
	logger.Info("Tool Call Request: %s(%s)", name, tc.Function.Arguments)

	msg := Message{Role: RoleTool, ToolCallID: tc.ID, Name: name}

	tool, ok := l.registry.Get(name)
	if !ok {
		err := errorsx.New(errorsx.ReasonUnknownTool, "unknown tool %q", name)
		logger.Info("Error: %v", err)
		l.emit(Event{State: StateExecutingTools, Round: round, Tool: name, Err: err})
		msg.Content = UnknownToolMessage(name)
		msg.Failed = true
		return msg
	}

	output, err := runTool(ctx, tool, tc.Function.Arguments)
	if err != nil {
		err = errorsx.Wrap(err, errorsx.ReasonToolFailure)
		logger.Info("Tool Execution Error (%s): %v", name, err)
		l.emit(Event{State: StateExecutingTools, Round: round, Tool: name, Err: err})
		msg.Content = ToolFailureMessage(name, err)
		msg.Failed = true
		return msg
	}

	logger.Debug("Tool Output (%s): %s", name, output)
	msg.Content = output
	return msg
}

func runTool(ctx context.Context, tool Tool, args string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return tool.Execute(ctx, args)
}

func (l *ToolCallLoop) emit(ev Event) {
	if l.observe != nil {
		l.observe(ev)
	}
}

// UnknownToolMessage is the tool response sent back when the model names a tool that is not registered
func UnknownToolMessage(name string) string {
	return fmt.Sprintf("Error: unknown tool %q. It is not available; answer without it or use one of the declared tools.", name)
}

// ToolFailureMessage is the tool response sent back when a tool fails
func ToolFailureMessage(name string, err error) string {
	return fmt.Sprintf("Error: tool %s failed: %v", name, err)
}
