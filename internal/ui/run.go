package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the full-screen panel and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	m := NewModel(ctx, deps)
	deps.Service.SetReporter(teaReporter{ch: m.eventCh})

	prog := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
