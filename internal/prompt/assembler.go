// Package prompt turns retrieved context and a conversation into the request
// sent to the language model.
package prompt

import (
	"errors"
	"strings"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/engine"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/retrieval"
)

const (
	ContextStart     = "CONTEXT START"
	ContextEnd       = "CONTEXT END"
	NoContextMarker  = "(No matching context found for this query)"
	ContextSeparator = "\n\n---\n\n"

	DefaultMaxHistoryTurns = 20
)

var errEmptyPolicy = errors.New("prompt: policy header is empty")

// Turn is one prior message of the conversation as the caller sent it.
type Turn struct {
	Role    string
	Content string
}

type Options struct {
	// MaxHistoryTurns keeps only the most recent turns. Zero means the default;
	// negative disables history.
	MaxHistoryTurns int
	Model           string
	Temperature     float64
}

// Assembler builds engine requests around a fixed policy header.
type Assembler struct {
	policy string
	opts   Options
}

func NewAssembler(policy string, opts Options) (*Assembler, error) {
	policy = strings.TrimSpace(policy)
	if policy == "" {
		return nil, errEmptyPolicy
	}
	if opts.MaxHistoryTurns == 0 {
		opts.MaxHistoryTurns = DefaultMaxHistoryTurns
	}
	return &Assembler{policy: policy, opts: opts}, nil
}

func (a *Assembler) Policy() string { return a.policy }

// Assemble lays out the request in a fixed order: policy, context block,
// reminder, prior turns, then the current message. Same inputs give the
// same request.
func (a *Assembler) Assemble(result retrieval.Result, history []Turn, message string) engine.Request {
	var sys strings.Builder
	sys.WriteString(a.policy)
	sys.WriteString("\n\n")
	sys.WriteString(ContextStart)
	sys.WriteString("\n")
	if result.Empty() {
		sys.WriteString(NoContextMarker)
	} else {
		sys.WriteString(strings.Join(result.Texts(), ContextSeparator))
	}
	sys.WriteString("\n")
	sys.WriteString(ContextEnd)
	sys.WriteString("\n\n")
	sys.WriteString(reminder)

	msgs := a.history(history)
	msgs = append(msgs, engine.Message{Role: engine.RoleUser, Content: strings.TrimSpace(message)})

	return engine.Request{
		Model:       a.opts.Model,
		System:      sys.String(),
		Messages:    msgs,
		Temperature: a.opts.Temperature,
	}
}

const reminder = "IMPORTANT:\n" +
	"- If the answer is clearly present in the context, answer briefly but clearly, using the exact names and spellings.\n" +
	"- If the answer is NOT present or is unclear from the context, reply exactly with:\n\"" + RefusalLine + "\""

func (a *Assembler) history(turns []Turn) []engine.Message {
	if a.opts.MaxHistoryTurns < 0 {
		return make([]engine.Message, 0, 1)
	}
	out := make([]engine.Message, 0, len(turns)+1)
	for _, t := range turns {
		role, ok := normalizeRole(t.Role)
		if !ok {
			continue
		}
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		out = append(out, engine.Message{Role: role, Content: content})
	}
	if n := a.opts.MaxHistoryTurns; len(out) > n {
		out = append(out[:0:0], out[len(out)-n:]...)
	}
	return out
}

// normalizeRole accepts user and assistant turns. Anything else, system
// included, is dropped so history cannot carry instructions.
func normalizeRole(role string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "user":
		return engine.RoleUser, true
	case "assistant", "model", "bot":
		return engine.RoleAssistant, true
	default:
		return "", false
	}
}
