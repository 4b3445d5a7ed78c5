// Package tui is the terminal chat client: a transcript viewport over a
// single-line input, driven by a session.Session.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/session"
)

const (
	title      = "Daly College Assistant"
	inputLines = 3
)

type Options struct {
	// GlamourStyle is a glamour standard style name; "auto" detects the
	// terminal background.
	GlamourStyle string
	ShowSources  bool
	Stream       bool
}

// snapshotMsg carries a session change into the update loop.
type snapshotMsg session.Snapshot

// sentMsg reports the end of one Send.
type sentMsg struct{ err error }

type Model struct {
	ctx     context.Context
	session *session.Session
	opts    Options

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	styles   styles

	snapshot session.Snapshot
	lastErr  error
	width    int
	height   int
	ready    bool
}

func New(ctx context.Context, sess *session.Session, opts Options) Model {
	st := defaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Ask about Daly College... (Enter to send, Ctrl+C to exit)"
	ti.Prompt = "> "
	ti.PromptStyle = st.Prompt
	ti.CharLimit = 2000
	ti.Width = 80
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.Spinner

	m := Model{
		ctx:      ctx,
		session:  sess,
		opts:     opts,
		viewport: viewport.New(80, 20),
		input:    ti,
		spinner:  sp,
		styles:   st,
		snapshot: sess.Snapshot(),
	}
	m.renderer = newRenderer(opts.GlamourStyle, 80)
	m.refresh()
	return m
}

func newRenderer(style string, width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	opt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		opt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(width-4))
	if err != nil {
		return nil
	}
	return r
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = max(msg.Width, 0), max(msg.Height, 0)
		m.viewport.Width = m.width
		m.viewport.Height = max(m.height-inputLines-1, 1)
		m.input.Width = max(m.width-4, 10)
		m.renderer = newRenderer(m.opts.GlamourStyle, m.width)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
		if msg.String() == "ctrl+s" {
			m.opts.ShowSources = !m.opts.ShowSources
			m.refresh()
			return m, nil
		}

	case snapshotMsg:
		wasAwaiting := m.snapshot.AwaitingReply
		m.snapshot = session.Snapshot(msg)
		m.refresh()
		if m.snapshot.AwaitingReply && !wasAwaiting {
			cmds = append(cmds, m.spinner.Tick)
		}

	case sentMsg:
		m.lastErr = msg.err
		m.snapshot = m.session.Snapshot()
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.snapshot.AwaitingReply {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit sends the input unless it is blank or a reply is pending; in both
// cases the input is left as it is.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.snapshot.AwaitingReply {
		return m, nil
	}
	m.input.Reset()
	m.lastErr = nil
	return m, tea.Batch(m.sendCmd(text), m.spinner.Tick)
}

func (m Model) sendCmd(text string) tea.Cmd {
	ctx, sess := m.ctx, m.session
	return func() tea.Msg {
		_, err := sess.Send(ctx, text)
		return sentMsg{err: err}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.snapshot.AwaitingReply:
		return m.spinner.View() + m.styles.Status.Render(" Thinking...")
	case m.lastErr != nil:
		return m.styles.Error.Render("Last request failed. Check that the server is running.")
	default:
		hint := "ctrl+s: show sources"
		if m.opts.ShowSources {
			hint = "ctrl+s: hide sources"
		}
		return m.styles.Status.Render(hint)
	}
}

func (m Model) renderTranscript() string {
	var sb strings.Builder
	for _, t := range m.snapshot.Turns {
		switch {
		case t.Role == session.RoleUser:
			sb.WriteString(m.styles.User.Render("You") + "\n")
			sb.WriteString(t.Text)
			sb.WriteString("\n\n")
		case t.Error:
			sb.WriteString(m.styles.Assistant.Render(title) + "\n")
			sb.WriteString(m.styles.Error.Render(t.Text))
			sb.WriteString("\n\n")
		default:
			sb.WriteString(m.styles.Assistant.Render(title) + "\n")
			sb.WriteString(m.renderMarkdown(t.Text))
			if m.opts.ShowSources && len(t.Sources) > 0 {
				sb.WriteString(m.styles.Sources.Render("Sources: " + strings.Join(t.Sources, "; ")))
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// renderMarkdown falls back to plain text when glamour fails or panics.
func (m Model) renderMarkdown(content string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = content
		}
	}()
	if m.renderer == nil || strings.TrimSpace(content) == "" {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
