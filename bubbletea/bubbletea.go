// Package bubbletea provides a Bubble Tea dashboard listing open previews.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/esteban-rocha/svgview"
)

// Manager is the subset of *svgview.Manager the dashboard drives.
type Manager interface {
	Surfaces() []svgview.SurfaceInfo
	NotifyChanged(uri svgview.URI)
	RefreshAll()
}

// Run creates and runs the dashboard. It blocks until the program exits. The
// context is used for graceful shutdown: when cancelled, the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// EventMsg wraps a manager event for delivery to the model.
type EventMsg struct {
	Event svgview.Event
}

// eventsClosedMsg signals that the event channel was closed.
type eventsClosedMsg struct{}

// listenForEvent waits for the next event from the channel.
func listenForEvent(ch <-chan svgview.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return EventMsg{Event: evt}
	}
}
