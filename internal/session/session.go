// Package session keeps the client-side transcript of one chat and sends
// new messages to the gateway one at a time.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/api"
)

const (
	WelcomeText = "Hello! I'm the Daly College Assistant. How can I help you today?"
	ErrorText   = "An error occurred. Please try again."
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Turn struct {
	Role    string
	Text    string
	Sources []string
	// Welcome and Error turns are shown but never sent back as history.
	Welcome bool
	Error   bool
}

type Snapshot struct {
	Turns         []Turn
	AwaitingReply bool
}

type Gateway interface {
	Chat(ctx context.Context, message string, history []api.HistoryTurn) (api.ChatReply, error)
}

// StreamingGateway is used instead of Chat when streaming is enabled.
type StreamingGateway interface {
	Gateway
	ChatStream(ctx context.Context, message string, history []api.HistoryTurn, onDelta func(string)) (api.ChatReply, error)
}

type Options struct {
	Welcome bool
	Stream  bool
	// OnChange receives a copy of the state after every change. It is
	// called outside the session lock.
	OnChange func(Snapshot)
}

type Session struct {
	gw       Gateway
	stream   StreamingGateway
	onChange func(Snapshot)

	mu       sync.Mutex
	turns    []Turn
	awaiting bool
}

func New(gw Gateway, opts Options) *Session {
	s := &Session{gw: gw, onChange: opts.OnChange}
	if sg, ok := gw.(StreamingGateway); ok && opts.Stream {
		s.stream = sg
	}
	if opts.Welcome {
		s.turns = append(s.turns, Turn{Role: RoleAssistant, Text: WelcomeText, Welcome: true})
	}
	return s
}

// Send submits text. Blank text, or a send while a reply is pending, is a
// no-op that returns false. Otherwise the user turn is visible right away
// and the reply (or an error turn) follows. The returned error is the
// gateway failure; the transcript already shows it.
func (s *Session) Send(ctx context.Context, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}

	s.mu.Lock()
	if s.awaiting {
		s.mu.Unlock()
		return false, nil
	}
	history := s.historyLocked()
	s.turns = append(s.turns, Turn{Role: RoleUser, Text: text})
	s.awaiting = true
	idx := -1
	if s.stream != nil {
		// Deltas fill this turn in place.
		idx = len(s.turns)
		s.turns = append(s.turns, Turn{Role: RoleAssistant})
	}
	s.unlockAndNotify()

	var (
		reply api.ChatReply
		err   error
	)
	if idx >= 0 {
		reply, err = s.stream.ChatStream(ctx, text, history, func(delta string) {
			s.mu.Lock()
			s.turns[idx].Text += delta
			s.unlockAndNotify()
		})

		s.mu.Lock()
		if err != nil {
			s.turns[idx] = Turn{Role: RoleAssistant, Text: ErrorText, Error: true}
		} else {
			s.turns[idx].Text = reply.Reply
			s.turns[idx].Sources = reply.Sources
		}
	} else {
		reply, err = s.gw.Chat(ctx, text, history)

		s.mu.Lock()
		if err != nil {
			s.turns = append(s.turns, Turn{Role: RoleAssistant, Text: ErrorText, Error: true})
		} else {
			s.turns = append(s.turns, Turn{Role: RoleAssistant, Text: reply.Reply, Sources: reply.Sources})
		}
	}
	s.awaiting = false
	s.unlockAndNotify()
	return true, err
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) AwaitingReply() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// historyLocked is the conversation sent upstream: real user and assistant
// turns only.
func (s *Session) historyLocked() []api.HistoryTurn {
	out := make([]api.HistoryTurn, 0, len(s.turns))
	for _, t := range s.turns {
		if t.Welcome || t.Error || strings.TrimSpace(t.Text) == "" {
			continue
		}
		out = append(out, api.HistoryTurn{Role: t.Role, Content: t.Text})
	}
	return out
}

func (s *Session) snapshotLocked() Snapshot {
	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)
	return Snapshot{Turns: turns, AwaitingReply: s.awaiting}
}

// unlockAndNotify releases the lock, then calls OnChange.
func (s *Session) unlockAndNotify() {
	snap := s.snapshotLocked()
	s.mu.Unlock()
	if s.onChange != nil {
		s.onChange(snap)
	}
}
