// Package engine defines the language-model collaborator the chat gateway
// dispatches assembled prompts to.
package engine

import (
	"context"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Request is the assembled prompt: a system instruction plus the ordered
// conversation, ending with the current user message.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	Temperature float64
}

// Render returns the request as deterministic flat text.
func (r Request) Render() string {
	var b strings.Builder
	b.WriteString("[system]\n")
	b.WriteString(r.System)
	for _, m := range r.Messages {
		b.WriteString("\n\n[")
		b.WriteString(m.Role)
		b.WriteString("]\n")
		b.WriteString(m.Content)
	}
	return b.String()
}

// LastUser returns the content of the final user message.
func (r Request) LastUser() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}

type Engine interface {
	Name() string
	GenerateText(ctx context.Context, req Request) (string, error)
	StreamText(ctx context.Context, req Request, onDelta func(delta string)) (full string, err error)
}
