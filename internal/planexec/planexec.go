// Package planexec plans a goal as ordered steps and executes each step
// with access to a tool registry.
package planexec

import (
	"context"
	"errors"
	"fmt"

	"github.com/reinhart/personaAgent/internal/assistant"
	"github.com/reinhart/personaAgent/internal/logger"
)

// Step is one planned action
type Step struct {
	Index       int
	Description string
}

// StepResult is the executor's response to one step
type StepResult struct {
	Step     Step
	Response string
	// Turn holds the tool calling trace when the executor ran a loop
	Turn *assistant.Result
}

// Planner breaks a goal into ordered steps
type Planner interface {
	Plan(ctx context.Context, goal string) ([]Step, error)
}

// Executor carries out one step given the results of the steps before it
type Executor interface {
	Execute(ctx context.Context, goal string, step Step, previous []StepResult) (StepResult, error)
}

// Outcome is the result of running a goal
type Outcome struct {
	Goal   string
	Plan   []Step
	Steps  []StepResult
	Answer string
	// Truncated is set when the plan was longer than the step limit
	Truncated bool
}

// Supervisor plans once, executes the steps in order and answers with the last step's response
type Supervisor struct {
	Planner  Planner
	Executor Executor
	MaxSteps int
	// OnStep, if set, is called after each step completes
	OnStep func(StepResult)
}

var ErrEmptyPlan = errors.New("planner returned no steps")

func (s *Supervisor) Run(ctx context.Context, goal string) (*Outcome, error) {
	plan, err := s.Planner.Plan(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("planning: %w", err)
	}
	if len(plan) == 0 {
		return nil, ErrEmptyPlan
	}

	out := &Outcome{Goal: goal}
	plan, out.Truncated = limitPlan(plan, s.MaxSteps)
	if out.Truncated {
		logger.Warn("Plan truncated to %d steps", len(plan))
	}
	out.Plan = plan

	for _, step := range plan {
		logger.Info("Executing step %d: %s", step.Index, step.Description)
		res, err := s.Executor.Execute(ctx, goal, step, out.Steps)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step.Index, err)
		}
		res.Step = step
		out.Steps = append(out.Steps, res)
		if s.OnStep != nil {
			s.OnStep(res)
		}
	}

	out.Answer = out.Steps[len(out.Steps)-1].Response
	return out, nil
}

// limitPlan keeps the first max-1 steps and the final step, which usually
// answers the goal. Steps are renumbered from 1.
func limitPlan(plan []Step, max int) ([]Step, bool) {
	truncated := false
	if max > 0 && len(plan) > max {
		kept := append([]Step(nil), plan[:max-1]...)
		plan = append(kept, plan[len(plan)-1])
		truncated = true
	}
	out := make([]Step, len(plan))
	for i, s := range plan {
		out[i] = Step{Index: i + 1, Description: s.Description}
	}
	return out, truncated
}
