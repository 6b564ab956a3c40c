package svgview

// RenderConfig carries the user settings that affect preview output.
type RenderConfig struct {
	// ShowTransparencyGrid composites the image over a background so that
	// transparent regions are visible.
	ShowTransparencyGrid bool
	// TransparencyColor replaces the checkerboard with a flat CSS color.
	// Empty means no color is configured.
	TransparencyColor string
}

// ConfigStore reads the current RenderConfig. Implementations must return
// fresh values on every call; callers never cache the result.
type ConfigStore interface {
	Config() RenderConfig
}

// Renderer turns markup text into a complete HTML document.
// Render must be total and deterministic.
type Renderer interface {
	Render(markup string, cfg RenderConfig) string
}
