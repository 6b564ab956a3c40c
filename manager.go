package svgview

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// DefaultDelay is the debounce window applied to change notifications.
const DefaultDelay = 300 * time.Millisecond

// refreshState is the debounce state of a single surface.
//
//	idle    --notify-->     pending  (arms timer)
//	pending --notify-->     pending  (coalesced)
//	pending --timer fires--> idle    (then one render-and-push)
type refreshState int

const (
	stateIdle refreshState = iota
	statePending
)

type surface struct {
	uri     URI
	display Display

	// Guarded by Manager.mu.
	state      refreshState
	timer      Timer
	content    string
	renderedAt time.Time
	lastErr    error
	active     bool

	// pushMu serializes render-and-push cycles for this surface.
	pushMu sync.Mutex
}

// SurfaceInfo is a point-in-time view of a registered surface.
type SurfaceInfo struct {
	URI        URI
	Content    string
	RenderedAt time.Time
	Pending    bool
	Active     bool
	Err        error
}

// Option configures a Manager.
type Option func(*Manager)

// WithDelay sets the debounce window. Non-positive values are ignored.
func WithDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.delay = d
		}
	}
}

// WithScheduler replaces the timer implementation.
func WithScheduler(s Scheduler) Option {
	return func(m *Manager) {
		m.scheduler = s
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithEventHandler sets a callback that receives lifecycle events. The
// handler may be called from timer goroutines and must not call back into
// the Manager synchronously.
func WithEventHandler(h func(Event)) Option {
	return func(m *Manager) {
		m.onEvent = h
	}
}

// Manager keeps live rendering surfaces in sync with their source
// documents. At most one surface exists per SourceIdentity.
type Manager struct {
	docs      DocumentSource
	config    ConfigStore
	renderer  Renderer
	delay     time.Duration
	scheduler Scheduler
	logger    *slog.Logger
	onEvent   func(Event)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	surfaces map[SourceIdentity]*surface
	subs     []func()
	active   *surface
	disposed bool
}

// NewManager creates a Manager that reads documents from docs and settings
// from config, and renders with renderer.
func NewManager(docs DocumentSource, config ConfigStore, renderer Renderer, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		docs:      docs,
		config:    config,
		renderer:  renderer,
		delay:     DefaultDelay,
		scheduler: realScheduler{},
		logger:    slog.Default(),
		ctx:       ctx,
		cancel:    cancel,
		surfaces:  make(map[SourceIdentity]*surface),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register opens a surface for uri, which may be a source URI or a preview
// URI. The current document text is rendered and pushed into display before
// Register returns. A fetch error is returned unchanged and nothing is
// registered. Registering an identity that already has a surface replaces it
// once any push already underway for the old surface has finished.
func (m *Manager) Register(ctx context.Context, uri URI, display Display) (SurfaceInfo, error) {
	src, err := SourceURI(uri)
	if err != nil {
		return SurfaceInfo{}, err
	}
	id := src.Identity()

	s := &surface{uri: src, display: display}
	s.pushMu.Lock()
	defer s.pushMu.Unlock()

	// held is the surface registered for id whose pushMu this call owns.
	var held *surface
	defer func() {
		if held != nil {
			held.pushMu.Unlock()
		}
	}()

	for {
		m.mu.Lock()
		if m.disposed {
			m.mu.Unlock()
			return SurfaceInfo{}, ErrDisposed
		}
		old := m.surfaces[id]
		m.mu.Unlock()

		if old != held {
			if held != nil {
				held.pushMu.Unlock()
			}
			held = old
			if held != nil {
				held.pushMu.Lock()
			}
			continue
		}

		text, err := m.docs.Open(ctx, src)
		if err != nil {
			return SurfaceInfo{}, err
		}
		s.content = m.renderer.Render(text, m.config.Config())
		s.renderedAt = time.Now()

		m.mu.Lock()
		if m.disposed {
			m.mu.Unlock()
			return SurfaceInfo{}, ErrDisposed
		}
		if m.surfaces[id] != held {
			m.mu.Unlock()
			continue
		}
		if held != nil {
			m.stopLocked(held)
			if m.active == held {
				m.active = nil
			}
		}
		m.surfaces[id] = s
		info := s.infoLocked()
		m.mu.Unlock()

		display.SetContent(info.Content)
		m.logger.Info("preview opened", "source", src.String())
		m.emit(EventRegistered{URI: src})
		m.emit(EventRendered{URI: src, At: info.RenderedAt, Size: len(info.Content)})
		return info, nil
	}
}

// Unregister removes the surface for uri, cancelling any pending refresh.
// It reports whether a surface was registered.
func (m *Manager) Unregister(uri URI) bool {
	src, err := SourceURI(uri)
	if err != nil {
		return false
	}
	m.mu.Lock()
	s, ok := m.surfaces[src.Identity()]
	if !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.surfaces, src.Identity())
	m.stopLocked(s)
	if m.active == s {
		m.active = nil
	}
	m.mu.Unlock()

	m.logger.Info("preview closed", "source", s.uri.String())
	m.emit(EventUnregistered{URI: s.uri})
	return true
}

// NotifyChanged schedules a debounced refresh of the surface for uri.
// Notifications for documents without a surface are ignored.
func (m *Manager) NotifyChanged(uri URI) {
	src, err := SourceURI(uri)
	if err != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return
	}
	if s, ok := m.surfaces[src.Identity()]; ok {
		m.scheduleLocked(s)
	}
}

// RefreshAll schedules a refresh of every surface. Use it when settings that
// affect rendering have changed.
func (m *Manager) RefreshAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return
	}
	for _, s := range m.surfaces {
		m.scheduleLocked(s)
	}
}

// SetActive records whether the surface for uri has focus. Activating a
// surface deactivates the previously active one.
func (m *Manager) SetActive(uri URI, active bool) {
	src, err := SourceURI(uri)
	if err != nil {
		return
	}
	var events []Event
	m.mu.Lock()
	s, ok := m.surfaces[src.Identity()]
	switch {
	case !ok || m.disposed:
	case active && m.active != s:
		if prev := m.active; prev != nil {
			prev.active = false
			events = append(events, EventActiveChanged{URI: prev.uri, Active: false})
		}
		s.active = true
		m.active = s
		events = append(events, EventActiveChanged{URI: s.uri, Active: true})
	case !active && m.active == s:
		s.active = false
		m.active = nil
		events = append(events, EventActiveChanged{URI: s.uri, Active: false})
	}
	m.mu.Unlock()

	for _, e := range events {
		m.emit(e)
	}
}

// Active returns the source URI of the focused surface.
func (m *Manager) Active() (URI, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return URI{}, false
	}
	return m.active.uri, true
}

// Surface returns a snapshot of the surface for uri.
func (m *Manager) Surface(uri URI) (SurfaceInfo, bool) {
	src, err := SourceURI(uri)
	if err != nil {
		return SurfaceInfo{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.surfaces[src.Identity()]
	if !ok {
		return SurfaceInfo{}, false
	}
	return s.infoLocked(), true
}

// Surfaces returns snapshots of all surfaces ordered by scheme and path.
func (m *Manager) Surfaces() []SurfaceInfo {
	m.mu.Lock()
	infos := make([]SurfaceInfo, 0, len(m.surfaces))
	for _, s := range m.surfaces {
		infos = append(infos, s.infoLocked())
	}
	m.mu.Unlock()

	slices.SortFunc(infos, func(a, b SurfaceInfo) int {
		return cmp.Or(cmp.Compare(a.URI.Scheme, b.URI.Scheme), cmp.Compare(a.URI.Path, b.URI.Path))
	})
	return infos
}

// Watch subscribes the manager to n. Notifications are funnelled into
// NotifyChanged. The subscription is released by Dispose.
func (m *Manager) Watch(n Notifier) {
	unsubscribe := n.Subscribe(m.NotifyChanged)
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		unsubscribe()
		return
	}
	m.subs = append(m.subs, unsubscribe)
	m.mu.Unlock()
}

// Dispose releases all subscriptions, cancels pending refreshes and clears
// the registry. It is safe to call more than once.
func (m *Manager) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	for id, s := range m.surfaces {
		m.stopLocked(s)
		delete(m.surfaces, id)
	}
	m.active = nil
	subs := m.subs
	m.subs = nil
	m.mu.Unlock()

	m.cancel()
	for _, unsubscribe := range subs {
		unsubscribe()
	}
}

func (m *Manager) scheduleLocked(s *surface) {
	if s.state == statePending {
		return
	}
	s.state = statePending
	s.timer = m.scheduler.AfterFunc(m.delay, func() { m.fire(s) })
}

func (m *Manager) stopLocked(s *surface) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = stateIdle
}

// fire runs when a debounce timer elapses. The pending flag is cleared
// before the document is fetched so that a notification arriving mid-refresh
// arms a follow-up timer.
func (m *Manager) fire(s *surface) {
	m.mu.Lock()
	if !m.currentLocked(s) || s.state != statePending {
		m.mu.Unlock()
		return
	}
	s.state = stateIdle
	s.timer = nil
	m.mu.Unlock()

	m.refresh(s)
}

func (m *Manager) refresh(s *surface) {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()

	text, err := m.docs.Open(m.ctx, s.uri)
	if err != nil {
		m.mu.Lock()
		current := m.currentLocked(s)
		if current {
			s.lastErr = err
		}
		m.mu.Unlock()
		if !current {
			return
		}
		m.logger.Warn("refresh skipped", "source", s.uri.String(), "err", err)
		m.emit(EventRefreshFailed{URI: s.uri, Err: err})
		return
	}
	html := m.renderer.Render(text, m.config.Config())

	m.mu.Lock()
	if !m.currentLocked(s) {
		m.mu.Unlock()
		return
	}
	s.content = html
	s.renderedAt = time.Now()
	s.lastErr = nil
	at := s.renderedAt
	m.mu.Unlock()

	s.display.SetContent(html)
	m.logger.Debug("preview refreshed", "source", s.uri.String(), "size", len(html))
	m.emit(EventRendered{URI: s.uri, At: at, Size: len(html)})
}

// currentLocked reports whether s is still the registered surface for its
// identity.
func (m *Manager) currentLocked(s *surface) bool {
	return !m.disposed && m.surfaces[s.uri.Identity()] == s
}

func (m *Manager) emit(e Event) {
	if m.onEvent != nil {
		m.onEvent(e)
	}
}

func (s *surface) infoLocked() SurfaceInfo {
	return SurfaceInfo{
		URI:        s.uri,
		Content:    s.content,
		RenderedAt: s.renderedAt,
		Pending:    s.state == statePending,
		Active:     s.active,
		Err:        s.lastErr,
	}
}
