package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/esteban-rocha/svgview"
)

// Styles maps a Theme to lipgloss styles for the dashboard.
type Styles struct {
	Title    lipgloss.Style
	Active   lipgloss.Style
	Pending  lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t svgview.Theme) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Foreground(ansiColor(t.Title)).Bold(true),
		Active:   lipgloss.NewStyle().Foreground(ansiColor(t.Active)).Bold(true),
		Pending:  lipgloss.NewStyle().Foreground(ansiColor(t.Pending)),
		Error:    lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success:  lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:    lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Selected: lipgloss.NewStyle().Reverse(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
