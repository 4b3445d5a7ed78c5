// Package rules answers some messages directly before retrieval runs. Rules
// are evaluated in order and the first match wins.
package rules

import (
	"strings"
	"unicode"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/config"
)

const DefaultGreetingReply = "Hello! I'm the Daly College Assistant. How can I help you today?"

var defaultGreetingWords = []string{
	"hi", "hii", "hello", "hey", "hola", "namaste", "greetings",
	"good", "morning", "afternoon", "evening", "there",
}

// Rule answers a message without calling the model.
type Rule struct {
	Name    string
	Match   func(message string) bool
	Respond func(message string) string
}

// Cascade is an ordered rule list. It is immutable after construction.
type Cascade struct {
	rules []Rule
}

func NewCascade(rules ...Rule) *Cascade {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Match == nil || r.Respond == nil {
			continue
		}
		out = append(out, r)
	}
	return &Cascade{rules: out}
}

// Evaluate returns the first matching rule's name and reply.
func (c *Cascade) Evaluate(message string) (name string, reply string, ok bool) {
	if c == nil {
		return "", "", false
	}
	for _, r := range c.rules {
		if r.Match(message) {
			return r.Name, r.Respond(message), true
		}
	}
	return "", "", false
}

func (c *Cascade) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rules)
}

// Greeting matches messages made only of greeting words, e.g. "hi" or
// "good morning!".
func Greeting(words []string, reply string) Rule {
	if len(words) == 0 {
		words = defaultGreetingWords
	}
	if strings.TrimSpace(reply) == "" {
		reply = DefaultGreetingReply
	}
	set := toSet(words)
	return Rule{
		Name: "greeting",
		Match: func(message string) bool {
			ws := splitWords(message)
			if len(ws) == 0 {
				return false
			}
			for _, w := range ws {
				if _, ok := set[w]; !ok {
					return false
				}
			}
			return true
		},
		Respond: constant(reply),
	}
}

// OutOfScope matches messages containing any blocked keyword as a whole word.
func OutOfScope(keywords []string, reply string) Rule {
	set := toSet(keywords)
	return Rule{
		Name: "out_of_scope",
		Match: func(message string) bool {
			if len(set) == 0 {
				return false
			}
			for _, w := range splitWords(message) {
				if _, ok := set[w]; ok {
					return true
				}
			}
			return false
		},
		Respond: constant(reply),
	}
}

// Shortcut matches messages containing one of phrases, ignoring case and
// spacing, and answers with a fixed reply.
func Shortcut(name string, phrases []string, reply string) Rule {
	norm := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = normalize(p); p != "" {
			norm = append(norm, p)
		}
	}
	if strings.TrimSpace(name) == "" {
		name = "shortcut"
	}
	return Rule{
		Name: "shortcut:" + name,
		Match: func(message string) bool {
			m := normalize(message)
			if m == "" {
				return false
			}
			for _, p := range norm {
				if strings.Contains(" "+m+" ", " "+p+" ") {
					return true
				}
			}
			return false
		},
		Respond: constant(reply),
	}
}

// FromConfig builds the configured cascade: shortcuts first, then
// out-of-scope, then greetings. fallback answers out-of-scope messages when
// the rule has no reply of its own.
func FromConfig(cfg config.RulesConfig, fallback string) *Cascade {
	var rs []Rule
	for _, s := range cfg.Shortcuts {
		rs = append(rs, Shortcut(s.Name, s.Phrases, s.Reply))
	}
	if cfg.OutOfScope.Enabled && len(cfg.OutOfScope.Keywords) > 0 {
		reply := cfg.OutOfScope.Reply
		if strings.TrimSpace(reply) == "" {
			reply = fallback
		}
		rs = append(rs, OutOfScope(cfg.OutOfScope.Keywords, reply))
	}
	if cfg.Greeting.Enabled {
		rs = append(rs, Greeting(cfg.Greeting.Words, cfg.Greeting.Reply))
	}
	return NewCascade(rs...)
}

func constant(reply string) func(string) string {
	return func(string) string { return reply }
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(s string) string {
	return strings.Join(splitWords(s), " ")
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		for _, part := range splitWords(w) {
			set[part] = struct{}{}
		}
	}
	return set
}
