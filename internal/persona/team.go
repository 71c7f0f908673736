package persona

import (
	"context"

	"github.com/reinhart/personaAgent/internal/assistant"
	"github.com/reinhart/personaAgent/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Report is everything the team produced for one topic
type Report struct {
	Topic   string
	Blog    string
	SEO     string
	Facts   string
	Summary string
}

// Team coordinates the blog writer, SEO checker and fact checker, then has
// a manager combine their work.
type Team struct {
	Writer      *Chain
	SEOChecker  *Chain
	FactChecker *Chain
	Manager     *Chain
}

// NewTeam wires the default personas to one provider
func NewTeam(provider assistant.LLMProvider) *Team {
	return &Team{
		Writer:      &Chain{Name: "blog writer", Provider: provider, Prompt: BlogWriterPrompt},
		SEOChecker:  &Chain{Name: "seo checker", Provider: provider, Prompt: SEOCheckerPrompt},
		FactChecker: &Chain{Name: "fact checker", Provider: provider, Prompt: FactCheckerPrompt},
		Manager:     &Chain{Name: "manager", Provider: provider, Prompt: ManagerReportPrompt},
	}
}

// Run writes the blog first; the two reviews only read it and run in parallel.
func (t *Team) Run(ctx context.Context, topic string) (*Report, error) {
	report := &Report{Topic: topic}

	logger.Info("Writing blog about %q", topic)
	blog, err := t.Writer.Run(ctx, map[string]string{"topic": topic})
	if err != nil {
		return nil, err
	}
	report.Blog = blog

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := t.SEOChecker.Run(gctx, map[string]string{"content": blog})
		report.SEO = out
		return err
	})
	g.Go(func() error {
		out, err := t.FactChecker.Run(gctx, map[string]string{"content": blog})
		report.Facts = out
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary, err := t.Manager.Run(ctx, map[string]string{
		"topic": topic,
		"blog":  report.Blog,
		"seo":   report.SEO,
		"facts": report.Facts,
	})
	if err != nil {
		return nil, err
	}
	report.Summary = summary
	return report, nil
}
