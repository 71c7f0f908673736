package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reinhart/personaAgent/internal/assistant"
	"github.com/reinhart/personaAgent/internal/configuration"
	"github.com/reinhart/personaAgent/internal/persona"
	"github.com/reinhart/personaAgent/internal/planexec"
	"github.com/reinhart/personaAgent/internal/session"
	"github.com/reinhart/personaAgent/internal/tools"
	"github.com/reinhart/personaAgent/internal/ui"
)

const defaultTravelQuestion = "I'm going to paris tomorrow. Do I need a raincoat or a winter coat?"

func runWeather(cfg *configuration.Config, args []string) error {
	fs := newFlagSet("weather")
	timeout := fs.Duration("timeout", 3*time.Minute, "overall deadline for the question")
	rounds := fs.Int("rounds", cfg.Agent.MaxRounds, "rounds of tool results sent back to the model")
	_ = fs.Parse(args)
	question := textArg(fs, defaultTravelQuestion)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider(provider)

	registry, err := assistant.NewToolRegistry(&tools.WeatherTool{})
	if err != nil {
		return err
	}
	opts := append(assistant.LoopOptions(cfg), assistant.WithMaxRounds(*rounds))
	loop := assistant.NewToolCallLoop(provider, registry, opts...)

	res, err := loop.Run(ctx, tools.TravelSystemPrompt, question)
	if err != nil {
		return err
	}

	fmt.Println("=== Tool Calling Demo ===")
	for _, line := range res.Transcript() {
		fmt.Println(line)
	}
	if len(res.ToolMessages()) == 0 {
		fmt.Println("Assistant: (No tool call was made.)")
	}
	return nil
}

func runTeam(cfg *configuration.Config, args []string) error {
	fs := newFlagSet("team")
	timeout := fs.Duration("timeout", 5*time.Minute, "overall deadline for the team")
	_ = fs.Parse(args)
	topic := textArg(fs, persona.TeamTopic)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider(provider)

	report, err := persona.NewTeam(provider).Run(ctx, topic)
	if err != nil {
		return err
	}

	printSection("BLOG POST", report.Blog)
	printSection("SEO REVIEW", report.SEO)
	printSection("FACT CHECK", report.Facts)
	printSection("MANAGER SUMMARY", report.Summary)
	return nil
}

func runSupervise(cfg *configuration.Config, args []string) error {
	fs := newFlagSet("supervise")
	timeout := fs.Duration("timeout", 10*time.Minute, "overall deadline for the goal")
	steps := fs.Int("steps", cfg.Agent.MaxPlanSteps, "maximum number of plan steps to execute")
	_ = fs.Parse(args)
	goal := textArg(fs, persona.SupervisorGoal)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider(provider)

	toolset := persona.NewToolset(provider)
	registry, err := toolset.Registry()
	if err != nil {
		return err
	}

	supervisor := &planexec.Supervisor{
		Planner: &planexec.LLMPlanner{Provider: provider},
		Executor: &planexec.LoopExecutor{
			Loop: assistant.NewToolCallLoop(provider, registry, assistant.LoopOptions(cfg)...),
		},
		MaxSteps: *steps,
		OnStep: func(res planexec.StepResult) {
			fmt.Printf("✓ Step %d: %s\n", res.Step.Index, res.Step.Description)
		},
	}

	outcome, err := supervisor.Run(ctx, goal)
	if err != nil {
		return err
	}
	if outcome.Truncated {
		fmt.Printf("(plan was cut to %d steps)\n", len(outcome.Plan))
	}
	printSection("FINAL ANSWER", outcome.Answer)

	for _, inv := range toolset.Censor.Invocations() {
		redactions := persona.Redactions(inv.Input, inv.Output)
		if len(redactions) == 0 {
			continue
		}
		fmt.Println("Censor redactions:")
		for _, r := range redactions {
			fmt.Printf("  %q -> %q\n", r.Removed, r.Replacement)
		}
	}
	return nil
}

func runChat(cfg *configuration.Config, args []string) error {
	fs := newFlagSet("chat")
	resume := fs.String("resume", "", "session id to resume, or 'latest'")
	timeout := fs.Duration("timeout", 3*time.Minute, "deadline for each reply")
	_ = fs.Parse(args)

	provider, err := newProvider(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer closeProvider(provider)

	dir, err := cfg.SessionDirectory()
	if err != nil {
		return err
	}
	store, err := session.NewStore(dir)
	if err != nil {
		return err
	}

	registry, err := assistant.NewToolRegistry(&tools.WeatherTool{})
	if err != nil {
		return err
	}
	agent := assistant.NewAgent(provider, registry, tools.TravelSystemPrompt, assistant.LoopOptions(cfg)...)

	var sess *session.Session
	switch *resume {
	case "":
		sess = store.New(assistant.ProviderName(provider), agent.NewConversation())
	case "latest":
		sess, err = store.Latest()
	default:
		sess, err = store.Load(*resume)
	}
	if err != nil {
		return err
	}

	model := ui.NewModel(agent, ui.Options{
		Title:   "personaAgent",
		Timeout: *timeout,
		Store:   store,
		Session: sess,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running chat: %w", err)
	}
	fmt.Printf("Session saved as %s (resume with: personaAgent chat -resume %s)\n", sess.ID, sess.ID)
	return nil
}

func printSection(title, body string) {
	fmt.Printf("\n===== %s =====\n%s\n", title, body)
}
