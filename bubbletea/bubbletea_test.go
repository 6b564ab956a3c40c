package bubbletea_test

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/esteban-rocha/svgview"
	bt "github.com/esteban-rocha/svgview/bubbletea"
	"github.com/stretchr/testify/require"
)

var _ bt.Manager = (*fakeManager)(nil)

// fakeManager records calls and serves a fixed surface list.
type fakeManager struct {
	mu         sync.Mutex
	surfaces   []svgview.SurfaceInfo
	notified   []svgview.URI
	refreshAll int
}

func (f *fakeManager) Surfaces() []svgview.SurfaceInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]svgview.SurfaceInfo(nil), f.surfaces...)
}

func (f *fakeManager) NotifyChanged(uri svgview.URI) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, uri)
}

func (f *fakeManager) RefreshAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshAll++
}

func (f *fakeManager) remove(uri svgview.URI) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.surfaces {
		if s.URI.Identity() == uri.Identity() {
			f.surfaces = append(f.surfaces[:i], f.surfaces[i+1:]...)
			return true
		}
	}
	return false
}

func fileURI(path string) svgview.URI {
	return svgview.URI{Scheme: svgview.FileScheme, Path: path}
}

func newFake() *fakeManager {
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	return &fakeManager{surfaces: []svgview.SurfaceInfo{
		{URI: fileURI("/work/a.svg"), RenderedAt: at, Active: true},
		{URI: fileURI("/work/b.svg"), RenderedAt: at, Pending: true},
		{URI: fileURI("/work/c.svg"), RenderedAt: at, Err: svgview.ErrSourceUnavailable},
	}}
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, manager bt.Manager, opts ...bt.Option) bt.Model {
	t.Helper()
	m := bt.New(manager, svgview.DefaultTheme(), opts...)
	return updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
