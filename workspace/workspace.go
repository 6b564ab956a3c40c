// Package workspace keeps editor buffers in memory on top of a fallback
// document source. Unsaved edits are visible to previews immediately.
package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/esteban-rocha/svgview"
)

// Interface compliance checks.
var (
	_ svgview.DocumentSource = (*Workspace)(nil)
	_ svgview.Notifier       = (*Workspace)(nil)
)

// Writer persists buffer text on save.
type Writer interface {
	Write(ctx context.Context, uri svgview.URI, text string) error
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithWriter sets where Save writes buffers. Without a writer, Save only
// marks the buffer clean and notifies subscribers.
func WithWriter(w Writer) Option {
	return func(ws *Workspace) {
		ws.writer = w
	}
}

type buffer struct {
	uri   svgview.URI
	text  string
	dirty bool
}

// Workspace is a set of open buffers. It implements svgview.DocumentSource,
// preferring buffer text over the fallback, and svgview.Notifier, publishing
// every edit and save.
type Workspace struct {
	fallback svgview.DocumentSource
	writer   Writer

	mu      sync.RWMutex
	buffers map[svgview.SourceIdentity]*buffer
	subs    map[int]func(svgview.URI)
	nextID  int
}

// New returns a Workspace reading unopened documents from fallback.
func New(fallback svgview.DocumentSource, opts ...Option) *Workspace {
	ws := &Workspace{
		fallback: fallback,
		buffers:  make(map[svgview.SourceIdentity]*buffer),
		subs:     make(map[int]func(svgview.URI)),
	}
	for _, opt := range opts {
		opt(ws)
	}
	return ws
}

// Open returns the buffer text for uri if a buffer is open, otherwise the
// fallback's text.
func (ws *Workspace) Open(ctx context.Context, uri svgview.URI) (string, error) {
	if text, ok := ws.bufferText(uri); ok {
		return text, nil
	}
	return ws.fallback.Open(ctx, uri)
}

// OpenBuffer loads uri into a buffer. Opening an already open buffer returns
// its current text.
func (ws *Workspace) OpenBuffer(ctx context.Context, uri svgview.URI) (string, error) {
	if text, ok := ws.bufferText(uri); ok {
		return text, nil
	}

	text, err := ws.fallback.Open(ctx, uri)
	if err != nil {
		return "", err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if b, ok := ws.buffers[uri.Identity()]; ok {
		return b.text, nil
	}
	ws.buffers[uri.Identity()] = &buffer{uri: uri, text: text}
	return text, nil
}

// Edit replaces the buffer text for uri, opening the buffer if needed, and
// notifies subscribers.
func (ws *Workspace) Edit(uri svgview.URI, text string) {
	ws.mu.Lock()
	b, ok := ws.buffers[uri.Identity()]
	if !ok {
		b = &buffer{uri: uri}
		ws.buffers[uri.Identity()] = b
	}
	b.text = text
	b.dirty = true
	subs := ws.subscribersLocked()
	ws.mu.Unlock()

	notify(subs, uri)
}

// Save writes the buffer for uri and notifies subscribers.
func (ws *Workspace) Save(ctx context.Context, uri svgview.URI) error {
	text, ok := ws.bufferText(uri)
	if !ok {
		return fmt.Errorf("save %s: no open buffer: %w", uri, svgview.ErrSourceUnavailable)
	}

	if ws.writer != nil {
		if err := ws.writer.Write(ctx, uri, text); err != nil {
			return fmt.Errorf("save %s: %w", uri, err)
		}
	}

	ws.mu.Lock()
	if cur, ok := ws.buffers[uri.Identity()]; ok && cur.text == text {
		cur.dirty = false
	}
	subs := ws.subscribersLocked()
	ws.mu.Unlock()

	notify(subs, uri)
	return nil
}

// CloseBuffer discards the buffer for uri. Unsaved edits are lost.
func (ws *Workspace) CloseBuffer(uri svgview.URI) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	delete(ws.buffers, uri.Identity())
}

// Dirty reports whether the buffer for uri has unsaved edits.
func (ws *Workspace) Dirty(uri svgview.URI) bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	b, ok := ws.buffers[uri.Identity()]
	return ok && b.dirty
}

// Subscribe registers fn for edit and save notifications.
func (ws *Workspace) Subscribe(fn func(svgview.URI)) func() {
	ws.mu.Lock()
	id := ws.nextID
	ws.nextID++
	ws.subs[id] = fn
	ws.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ws.mu.Lock()
			delete(ws.subs, id)
			ws.mu.Unlock()
		})
	}
}

func (ws *Workspace) subscribersLocked() []func(svgview.URI) {
	subs := make([]func(svgview.URI), 0, len(ws.subs))
	for _, fn := range ws.subs {
		subs = append(subs, fn)
	}
	return subs
}

func (ws *Workspace) bufferText(uri svgview.URI) (string, bool) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	b, ok := ws.buffers[uri.Identity()]
	if !ok {
		return "", false
	}
	return b.text, true
}

func notify(subs []func(svgview.URI), uri svgview.URI) {
	for _, fn := range subs {
		fn(uri)
	}
}
