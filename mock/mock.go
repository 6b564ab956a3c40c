// Package mock provides test doubles for svgview interfaces using function fields.
package mock

import (
	"context"

	"github.com/esteban-rocha/svgview"
)

// Interface compliance checks.
var (
	_ svgview.DocumentSource = (*DocumentSource)(nil)
	_ svgview.ConfigStore    = (*ConfigStore)(nil)
	_ svgview.Renderer       = (*Renderer)(nil)
	_ svgview.Display        = (*Display)(nil)
	_ svgview.Notifier       = (*Notifier)(nil)
)

// DocumentSource is a test double for svgview.DocumentSource.
// Set OpenFn before calling Open.
type DocumentSource struct {
	OpenFn func(ctx context.Context, uri svgview.URI) (string, error)
}

// Open delegates to OpenFn.
func (d *DocumentSource) Open(ctx context.Context, uri svgview.URI) (string, error) {
	return d.OpenFn(ctx, uri)
}

// ConfigStore is a test double for svgview.ConfigStore.
// Set ConfigFn before calling Config.
type ConfigStore struct {
	ConfigFn func() svgview.RenderConfig
}

// Config delegates to ConfigFn.
func (c *ConfigStore) Config() svgview.RenderConfig {
	return c.ConfigFn()
}

// Renderer is a test double for svgview.Renderer.
// Set RenderFn before calling Render.
type Renderer struct {
	RenderFn func(markup string, cfg svgview.RenderConfig) string
}

// Render delegates to RenderFn.
func (r *Renderer) Render(markup string, cfg svgview.RenderConfig) string {
	return r.RenderFn(markup, cfg)
}

// Display is a test double for svgview.Display.
// Set SetContentFn before calling SetContent.
type Display struct {
	SetContentFn func(html string)
}

// SetContent delegates to SetContentFn.
func (d *Display) SetContent(html string) {
	d.SetContentFn(html)
}

// Notifier is a test double for svgview.Notifier.
// Set SubscribeFn before calling Subscribe.
type Notifier struct {
	SubscribeFn func(fn func(svgview.URI)) func()
}

// Subscribe delegates to SubscribeFn.
func (n *Notifier) Subscribe(fn func(svgview.URI)) func() {
	return n.SubscribeFn(fn)
}
