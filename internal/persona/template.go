package persona

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/reinhart/personaAgent/internal/assistant"
)

// Part is one message of a prompt template; Text uses text/template syntax
type Part struct {
	Role assistant.Role
	Text string
}

// PromptTemplate renders an ordered list of messages from named variables
type PromptTemplate struct {
	parts []compiledPart
}

type compiledPart struct {
	role assistant.Role
	tmpl *template.Template
}

// NewPromptTemplate parses every part. Rendering fails on variables that were not supplied.
func NewPromptTemplate(parts ...Part) (*PromptTemplate, error) {
	pt := &PromptTemplate{}
	for i, p := range parts {
		tmpl, err := template.New(fmt.Sprintf("%s-%d", p.Role, i)).Option("missingkey=error").Parse(p.Text)
		if err != nil {
			return nil, fmt.Errorf("prompt part %d: %w", i, err)
		}
		pt.parts = append(pt.parts, compiledPart{role: p.Role, tmpl: tmpl})
	}
	return pt, nil
}

// MustPromptTemplate is NewPromptTemplate for templates known at compile time
func MustPromptTemplate(parts ...Part) *PromptTemplate {
	pt, err := NewPromptTemplate(parts...)
	if err != nil {
		panic(err)
	}
	return pt
}

// Format renders the messages
func (pt *PromptTemplate) Format(vars map[string]string) ([]assistant.Message, error) {
	msgs := make([]assistant.Message, 0, len(pt.parts))
	for _, p := range pt.parts {
		var sb strings.Builder
		if err := p.tmpl.Execute(&sb, vars); err != nil {
			return nil, fmt.Errorf("rendering %s prompt: %w", p.role, err)
		}
		msgs = append(msgs, assistant.Message{Role: p.role, Content: sb.String()})
	}
	return msgs, nil
}
