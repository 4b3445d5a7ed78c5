package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/session"
)

// Run starts an interactive chat against gw and blocks until the user quits
// or ctx is done.
func Run(ctx context.Context, gw session.Gateway, opts Options) error {
	var p *tea.Program
	sess := session.New(gw, session.Options{
		Welcome: true,
		Stream:  opts.Stream,
		OnChange: func(s session.Snapshot) {
			if p != nil {
				p.Send(snapshotMsg(s))
			}
		},
	})
	p = tea.NewProgram(New(ctx, sess, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
