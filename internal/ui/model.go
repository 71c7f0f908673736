package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/reinhart/personaAgent/internal/assistant"
	"github.com/reinhart/personaAgent/internal/logger"
	"github.com/reinhart/personaAgent/internal/session"
)

// --- Palette & Styles ---

var (
	colorText    = lipgloss.Color("#cdd6f4")
	colorSubtext = lipgloss.Color("#9399b2")
	colorUser    = lipgloss.Color("#ef9f76")
	colorAgent   = lipgloss.Color("#a6e3a1")
	colorAccent  = lipgloss.Color("#cba6f7")
	colorBorder  = lipgloss.Color("#45475a")
	colorActive  = lipgloss.Color("#f9e2af")

	styleBase = lipgloss.NewStyle().Foreground(colorText)

	styleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	styleFocusBorder = styleBorder.
				BorderForeground(colorActive)

	styleUserHeader = lipgloss.NewStyle().
			Foreground(colorUser).
			Bold(true).
			MarginTop(1)

	styleAgentHeader = lipgloss.NewStyle().
				Foreground(colorAgent).
				Bold(true).
				MarginTop(1)

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f38ba8")).
			Bold(true)

	styleStatus = lipgloss.NewStyle().
			Foreground(colorSubtext).
			Italic(true)

	styleHeader = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			PaddingLeft(1)
)

func renderUser(text string) string {
	return "\n" + styleUserHeader.Render("You") + "\n" + styleBase.Render(text) + "\n"
}

func renderReply(title, text string) string {
	return styleAgentHeader.Render(title) + "\n" + styleBase.Render(text) + "\n"
}

type State int

const (
	StateReady State = iota
	StateThinking
)

// Options configures the chat model
type Options struct {
	Title   string
	Timeout time.Duration
	// Store and Session are optional; when both are set the conversation is saved after every turn
	Store   *session.Store
	Session *session.Session
}

// Model is the chat screen. It owns the conversation of its session.
type Model struct {
	agent         *assistant.Agent
	conv          assistant.Conversation
	opts          Options
	textarea      textarea.Model
	viewport      viewport.Model
	spinner       spinner.Model
	state         State
	statusHistory []string
	transcript    string

	// Layout
	width  int
	height int
}

func newTextarea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about your trip..."
	ta.Focus()
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 1000

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorSubtext)
	ta.FocusedStyle.Text = lipgloss.NewStyle().Foreground(colorText)
	return ta
}

func NewModel(agent *assistant.Agent, opts Options) Model {
	if opts.Title == "" {
		opts.Title = "personaAgent"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 3 * time.Minute
	}

	conv := agent.NewConversation()
	if opts.Session != nil && opts.Session.Conversation.Len() > 0 {
		conv = opts.Session.Conversation
	}

	vp := viewport.New(80, 20)
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m := Model{
		agent:         agent,
		conv:          conv,
		opts:          opts,
		textarea:      newTextarea(),
		viewport:      vp,
		spinner:       s,
		state:         StateReady,
		statusHistory: []string{},
	}
	m.transcript = styleAgentHeader.Render(opts.Title) + "\n" +
		styleBase.Render("Welcome! Ask me what to pack and I'll check the weather first.")
	m.transcript += renderHistory(conv, opts.Title)
	m.viewport.SetContent(m.transcript)
	return m
}

// Conversation returns the conversation as of the last completed turn
func (m Model) Conversation() assistant.Conversation {
	return m.conv
}

// renderHistory shows the user and final assistant messages of a resumed session
func renderHistory(conv assistant.Conversation, title string) string {
	var sb strings.Builder
	for _, msg := range conv.Messages {
		switch {
		case msg.Role == assistant.RoleUser:
			sb.WriteString(renderUser(msg.Content))
		case msg.Role == assistant.RoleAssistant && len(msg.ToolCalls) == 0:
			sb.WriteString(renderReply(title, msg.Content))
		}
	}
	return sb.String()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

type agentMsg struct {
	response string
	conv     assistant.Conversation
	err      error
}

type statusMsg struct {
	msg string
}

func listenForUpdates(sub <-chan assistant.StatusUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-sub
		if !ok {
			return nil
		}
		return statusMsg{msg: update.Message}
	}
}

func (m Model) processInput(conv assistant.Conversation, input string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.opts.Timeout)
		defer cancel()

		resp, next, err := m.agent.ProcessMessage(ctx, conv, input)
		return agentMsg{response: resp, conv: next, err: err}
	}
}

func (m *Model) appendTranscript(s string) {
	m.transcript += s
	m.viewport.SetContent(m.transcript)
	m.viewport.GotoBottom()
}

func (m Model) saveSession() {
	if m.opts.Store == nil || m.opts.Session == nil {
		return
	}
	m.opts.Session.Conversation = m.conv
	if err := m.opts.Store.Save(m.opts.Session); err != nil {
		logger.Warn("Saving session %s: %v", m.opts.Session.ID, err)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Header + borders + status + input
		viewportHeight := msg.Height - 8
		if viewportHeight < 5 {
			viewportHeight = 5
		}
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = viewportHeight
		m.textarea.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if !msg.Alt && m.state == StateReady {
				input := strings.TrimSpace(m.textarea.Value())
				if input == "" {
					break
				}
				m.appendTranscript(renderUser(input))

				m.state = StateThinking
				m.statusHistory = []string{"Thinking..."}

				// A fresh textarea drops any scroll state left by the Enter key
				ta := newTextarea()
				ta.SetWidth(m.width - 4)
				m.textarea = ta

				cmds = append(cmds, listenForUpdates(m.agent.Updates()))
				cmds = append(cmds, m.processInput(m.conv, input))
				return m, tea.Batch(cmds...)
			}
		}

	case statusMsg:
		m.statusHistory = append(m.statusHistory, msg.msg)
		if len(m.statusHistory) > 3 {
			m.statusHistory = m.statusHistory[len(m.statusHistory)-3:]
		}
		if m.state == StateThinking {
			cmds = append(cmds, listenForUpdates(m.agent.Updates()))
		}

	case agentMsg:
		m.state = StateReady

		var output string
		if msg.err != nil {
			// The conversation is left as it was so the question can be asked again
			output = styleAgentHeader.Render(m.opts.Title) + "\n" + styleError.Render(fmt.Sprintf("Error: %v", msg.err)) + "\n"
		} else {
			m.conv = msg.conv
			m.saveSession()
			output = renderReply(m.opts.Title, msg.response)
		}

		separator := lipgloss.NewStyle().Foreground(colorBorder).Render(strings.Repeat("─", max(m.width/2, 1)))
		m.appendTranscript(output + "\n" + separator + "\n")

		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		m.textarea.Focus()
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if m.state == StateThinking {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	// Skip textarea while thinking so stale key events are not processed
	if m.state == StateReady {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// headerView names the session being written to, if any
func (m Model) headerView() string {
	title := m.opts.Title
	if m.opts.Session != nil {
		title += fmt.Sprintf("  ·  session %s", m.opts.Session.ID)
	}
	turns := 0
	for _, msg := range m.conv.Messages {
		if msg.Role == assistant.RoleUser {
			turns++
		}
	}
	return styleHeader.Width(m.width).Render(fmt.Sprintf("%s  ·  %d turns", title, turns))
}

func (m Model) View() string {
	chatView := styleBorder.Width(m.width - 2).Height(m.viewport.Height + 2).Render(m.viewport.View())

	var statusStr string
	if m.state == StateThinking {
		statusStr = fmt.Sprintf(" %s %s", m.spinner.View(), styleStatus.Render(strings.Join(m.statusHistory, "  ➜  ")))
	} else {
		statusStr = styleStatus.Render(" Ready.")
	}
	statusView := lipgloss.NewStyle().Width(m.width).PaddingLeft(1).Render(statusStr)

	prompt := lipgloss.NewStyle().Foreground(colorUser).Render("› ")
	inputView := styleFocusBorder.Width(m.width - 2).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, prompt, m.textarea.View()))

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		chatView,
		statusView,
		inputView,
	)
}
