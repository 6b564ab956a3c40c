package bubbletea

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/esteban-rocha/svgview"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

var _ tea.Model = Model{}

const (
	markerWidth = 1
	stateWidth  = 7
	timeWidth   = 8
)

// KeyMap is the set of key bindings the dashboard responds to.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Refresh    key.Binding
	RefreshAll key.Binding
	Close      key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Refresh:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "refresh")),
		RefreshAll: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh all")),
		Close:      key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "close")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Option configures a Model.
type Option func(*Model)

// WithEvents sets the channel of manager events the dashboard follows.
func WithEvents(ch <-chan svgview.Event) Option {
	return func(m *Model) {
		m.events = ch
	}
}

// WithClose sets the function used to close the selected preview. Without
// it the close key does nothing.
func WithClose(fn func(svgview.URI) bool) Option {
	return func(m *Model) {
		m.closeFn = fn
	}
}

// Model is the Bubble Tea model for the preview dashboard.
type Model struct {
	// KeyMap holds the active bindings. Exported for customization.
	KeyMap KeyMap
	// Viewport is the scrollable surface list. Exported for test access.
	Viewport viewport.Model

	manager Manager
	closeFn func(svgview.URI) bool
	events  <-chan svgview.Event
	styles  Styles

	rows      []svgview.SurfaceInfo
	cursor    int
	status    string
	statusErr bool
	width     int
	ready     bool
}

// New creates a dashboard for manager.
func New(manager Manager, theme svgview.Theme, opts ...Option) Model {
	m := Model{
		KeyMap:  DefaultKeyMap(),
		manager: manager,
		styles:  NewStyles(theme),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m.reload()
}

// Rows returns the surfaces currently listed.
func (m Model) Rows() []svgview.SurfaceInfo { return m.rows }

// Cursor returns the index of the selected row.
func (m Model) Cursor() int { return m.cursor }

// Status returns the last status message.
func (m Model) Status() string { return m.status }

// Selected returns the selected surface.
func (m Model) Selected() (svgview.SurfaceInfo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return svgview.SurfaceInfo{}, false
	}
	return m.rows[m.cursor], true
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return listenForEvent(m.events)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		m.status, m.statusErr = describe(msg.Event)
		m = m.reload()
		if m.events != nil {
			return m, listenForEvent(m.events)
		}
		return m, nil

	case eventsClosedMsg:
		m.events = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.titleLine())
	b.WriteString("\n")
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	titleHeight := 1
	statusHeight := 1
	helpHeight := 1
	vpHeight := msg.Height - titleHeight - statusHeight - helpHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.width = msg.Width
	m.Viewport.SetContent(m.renderContent())
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.KeyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.KeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m = m.render()
		return m, nil

	case key.Matches(msg, m.KeyMap.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		m = m.render()
		return m, nil

	case key.Matches(msg, m.KeyMap.RefreshAll):
		m.manager.RefreshAll()
		m.status, m.statusErr = "Refreshing all previews", false
		return m.reload(), nil

	case key.Matches(msg, m.KeyMap.Refresh):
		if s, ok := m.Selected(); ok {
			m.manager.NotifyChanged(s.URI)
			m.status, m.statusErr = "Refreshing "+displayName(s.URI), false
		}
		return m.reload(), nil

	case key.Matches(msg, m.KeyMap.Close):
		if s, ok := m.Selected(); ok && m.closeFn != nil {
			if m.closeFn(s.URI) {
				m.status, m.statusErr = "Closed "+displayName(s.URI), false
			}
		}
		return m.reload(), nil
	}

	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
	}
	return m, cmd
}

// reload fetches the surface list and keeps the cursor in range.
func (m Model) reload() Model {
	m.rows = m.manager.Surfaces()
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m.render()
}

func (m Model) render() Model {
	if m.ready {
		m.Viewport.SetContent(m.renderContent())
	}
	return m
}

func (m Model) renderContent() string {
	if len(m.rows) == 0 {
		return m.styles.Muted.Render("No open previews.")
	}
	pathWidth := m.width - markerWidth - stateWidth - timeWidth - 3
	if pathWidth < 10 {
		pathWidth = 10
	}

	var b strings.Builder
	for i, s := range m.rows {
		if i > 0 {
			b.WriteString("\n")
		}
		marker := " "
		if s.Active {
			marker = "●"
		}
		state, style := m.state(s)
		docPath := runewidth.FillRight(truncateLeft(s.URI.Path, pathWidth), pathWidth)
		rendered := s.RenderedAt.Format(time.TimeOnly)

		if i == m.cursor {
			line := strings.Join([]string{marker, runewidth.FillRight(state, stateWidth), docPath, rendered}, " ")
			b.WriteString(m.styles.Selected.Render(line))
			continue
		}
		b.WriteString(m.styles.Active.Render(marker))
		b.WriteString(" ")
		b.WriteString(style.Render(runewidth.FillRight(state, stateWidth)))
		b.WriteString(" ")
		b.WriteString(docPath)
		b.WriteString(" ")
		b.WriteString(m.styles.Muted.Render(rendered))
	}
	return b.String()
}

func (m Model) state(s svgview.SurfaceInfo) (string, lipgloss.Style) {
	switch {
	case s.Pending:
		return "pending", m.styles.Pending
	case s.Err != nil:
		return "stale", m.styles.Error
	default:
		return "ok", m.styles.Success
	}
}

func (m Model) titleLine() string {
	left := "svgview"
	right := fmt.Sprintf("%d open", len(m.rows))
	gap := m.width - uniseg.StringWidth(left) - uniseg.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	return m.styles.Title.Render(left) + strings.Repeat(" ", gap) + m.styles.Muted.Render(right)
}

func (m Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return m.styles.Error.Render(m.status)
	}
	return m.status
}

func (m Model) helpLine() string {
	bindings := []key.Binding{m.KeyMap.Up, m.KeyMap.Down, m.KeyMap.Refresh, m.KeyMap.RefreshAll, m.KeyMap.Close, m.KeyMap.Quit}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.Muted.Render(strings.Join(parts, " • "))
}

// describe turns an event into a status message and whether it reports a
// failure.
func describe(e svgview.Event) (string, bool) {
	switch e := e.(type) {
	case svgview.EventRegistered:
		return "Opened " + displayName(e.URI), false
	case svgview.EventUnregistered:
		return "Closed " + displayName(e.URI), false
	case svgview.EventRendered:
		return fmt.Sprintf("Rendered %s (%d bytes)", displayName(e.URI), e.Size), false
	case svgview.EventRefreshFailed:
		return fmt.Sprintf("Refresh of %s failed: %v", displayName(e.URI), e.Err), true
	case svgview.EventActiveChanged:
		if e.Active {
			return "Focused " + displayName(e.URI), false
		}
		return "Unfocused " + displayName(e.URI), false
	}
	return "", false
}

func displayName(uri svgview.URI) string {
	return path.Base(uri.Path)
}

// truncateLeft shortens s to at most width cells, keeping the end of the
// string.
func truncateLeft(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	const ellipsis = "…"
	budget := width - runewidth.StringWidth(ellipsis)
	if budget <= 0 {
		return runewidth.Truncate(s, width, "")
	}
	runes := []rune(s)
	i := len(runes)
	used := 0
	for i > 0 {
		w := runewidth.RuneWidth(runes[i-1])
		if used+w > budget {
			break
		}
		used += w
		i--
	}
	return ellipsis + string(runes[i:])
}
