package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/api"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/session"
)

type stubGateway struct {
	reply api.ChatReply
	calls int
}

func (s *stubGateway) Chat(context.Context, string, []api.HistoryTurn) (api.ChatReply, error) {
	s.calls++
	return s.reply, nil
}

func newTestModel(gw session.Gateway, showSources bool) Model {
	sess := session.New(gw, session.Options{Welcome: true})
	m := New(context.Background(), sess, Options{GlamourStyle: "notty", ShowSources: showSources})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func TestWindowSize(t *testing.T) {
	m := newTestModel(&stubGateway{}, false)
	if m.width != 100 || m.height != 30 {
		t.Fatalf("size=%dx%d", m.width, m.height)
	}
	if m.viewport.Height != 30-inputLines-1 {
		t.Fatalf("viewport height=%d", m.viewport.Height)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 0, Height: 0})
	if next.(Model).viewport.Height < 1 {
		t.Fatalf("viewport height must stay positive")
	}
}

func TestWelcomeIsRendered(t *testing.T) {
	m := newTestModel(&stubGateway{}, false)
	if !strings.Contains(m.View(), "How can I help you today?") {
		t.Fatalf("welcome turn missing from view:\n%s", m.View())
	}
}

func TestEnterSendsAndRendersReply(t *testing.T) {
	gw := &stubGateway{reply: api.ChatReply{Reply: "The principal is Mr. Gurmeet Singh.", Sources: []string{"principal_desk > name"}}}
	m := newTestModel(gw, true)
	m = typeText(m, "Who is the principal?")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("enter produced no command")
	}
	if m.input.Value() != "" {
		t.Fatalf("input not cleared: %q", m.input.Value())
	}

	msg := m.sendCmd("Who is the principal?")()
	next, _ = m.Update(msg)
	m = next.(Model)

	if gw.calls != 1 {
		t.Fatalf("gateway calls=%d", gw.calls)
	}
	content := m.renderTranscript()
	for _, want := range []string{"Who is the principal?", "Mr. Gurmeet Singh", "Sources: principal_desk > name"} {
		if !strings.Contains(content, want) {
			t.Fatalf("transcript missing %q:\n%s", want, content)
		}
	}
}

func TestEnterIgnoredWhenBlankOrAwaiting(t *testing.T) {
	m := newTestModel(&stubGateway{}, false)

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("blank input produced a command")
	}

	m = typeText(m, "second question")
	next, _ := m.Update(snapshotMsg(session.Snapshot{AwaitingReply: true}))
	m = next.(Model)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("enter while awaiting produced a command")
	}
	if next.(Model).input.Value() != "second question" {
		t.Fatalf("input should be kept while awaiting")
	}
}

func TestSnapshotShowsErrorTurn(t *testing.T) {
	m := newTestModel(&stubGateway{}, false)
	next, _ := m.Update(snapshotMsg(session.Snapshot{Turns: []session.Turn{
		{Role: session.RoleUser, Text: "hello"},
		{Role: session.RoleAssistant, Text: session.ErrorText, Error: true},
	}}))
	if !strings.Contains(next.(Model).renderTranscript(), session.ErrorText) {
		t.Fatalf("error turn not rendered")
	}
}

func TestToggleSources(t *testing.T) {
	m := newTestModel(&stubGateway{}, false)
	next, _ := m.Update(snapshotMsg(session.Snapshot{Turns: []session.Turn{
		{Role: session.RoleAssistant, Text: "Nets open at 6 am.", Sources: []string{"sports > cricket"}},
	}}))
	m = next.(Model)
	if strings.Contains(m.renderTranscript(), "sports > cricket") {
		t.Fatalf("sources shown while hidden")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !strings.Contains(next.(Model).renderTranscript(), "sports > cricket") {
		t.Fatalf("sources not shown after toggle")
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(&stubGateway{}, false)
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		_, cmd := m.Update(tea.KeyMsg{Type: k})
		if cmd == nil {
			t.Fatalf("key %v: no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("key %v did not quit", k)
		}
	}
}
