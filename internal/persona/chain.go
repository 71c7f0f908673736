package persona

import (
	"context"
	"fmt"

	"github.com/reinhart/personaAgent/internal/assistant"
	"github.com/reinhart/personaAgent/internal/errorsx"
	"github.com/reinhart/personaAgent/internal/logger"
)

// Chain sends one rendered prompt to a model and returns the reply text
type Chain struct {
	Name     string
	Provider assistant.LLMProvider
	Prompt   *PromptTemplate
}

// Run renders the prompt with vars and asks the model once, without tools
func (c *Chain) Run(ctx context.Context, vars map[string]string) (string, error) {
	msgs, err := c.Prompt.Format(vars)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.Name, err)
	}
	logger.Debug("Running %s chain", c.Name)

	reply, err := c.Provider.Chat(ctx, msgs, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.Name, errorsx.Wrap(err, errorsx.ReasonModelUnavailable))
	}
	if reply == nil {
		return "", errorsx.New(errorsx.ReasonModelUnavailable, "%s: model returned no message", c.Name)
	}
	return reply.Content, nil
}
