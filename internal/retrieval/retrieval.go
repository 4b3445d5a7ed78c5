// Package retrieval selects the knowledge fragments relevant to a question by
// plain keyword overlap. No stemming, no synonyms, no embeddings.
package retrieval

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/knowledge"
)

const (
	// DefaultMaxResults caps how many fragments go into one prompt.
	DefaultMaxResults = 20

	minTokenRunes = 2
)

// Match is a fragment with the number of distinct query tokens it contains.
type Match struct {
	Fragment knowledge.Fragment
	Score    int
}

// Result holds matches ordered by descending score, ties in document order.
type Result struct {
	Matches []Match
}

func (r Result) Empty() bool { return len(r.Matches) == 0 }

func (r Result) Len() int { return len(r.Matches) }

func (r Result) Texts() []string {
	out := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Fragment.Text
	}
	return out
}

// Breadcrumbs lists the distinct fragment breadcrumbs in result order.
func (r Result) Breadcrumbs() []string {
	seen := make(map[string]struct{}, len(r.Matches))
	out := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		b := m.Fragment.Breadcrumb()
		if b == "" {
			continue
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}

// Tokenize lower-cases the query and splits it on anything that is not a
// letter or digit. Tokens shorter than two runes are dropped and repeats are
// removed, keeping first occurrence.
func Tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTokenRunes {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Corpus is the searchable form of a fragment list. It is read-only once
// built and safe for concurrent use.
type Corpus struct {
	fragments []knowledge.Fragment
	lowered   []string
}

func NewCorpus(fragments []knowledge.Fragment) *Corpus {
	lowered := make([]string, len(fragments))
	for i, f := range fragments {
		lowered[i] = strings.ToLower(f.Text)
	}
	return &Corpus{fragments: fragments, lowered: lowered}
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fragments)
}

// Retrieve scores every fragment by how many distinct query tokens occur as
// substrings of its text and keeps the best max (DefaultMaxResults when max
// is not positive).
func (c *Corpus) Retrieve(query string, max int) Result {
	if c == nil || len(c.fragments) == 0 {
		return Result{}
	}
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return Result{}
	}
	if max <= 0 {
		max = DefaultMaxResults
	}

	var matches []Match
	for i, text := range c.lowered {
		score := 0
		for _, tok := range tokens {
			if strings.Contains(text, tok) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, Match{Fragment: c.fragments[i], Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > max {
		matches = matches[:max]
	}
	return Result{Matches: matches}
}

// Retrieve is a one-off search over fragments without keeping a Corpus.
func Retrieve(fragments []knowledge.Fragment, query string, max int) Result {
	return NewCorpus(fragments).Retrieve(query, max)
}
