package svgview

// Theme defines semantic color mappings for the dashboard using ANSI color
// indices (0-15). The user's terminal theme determines the actual RGB values.
type Theme struct {
	Title   int // Header text
	Active  int // Focused surface marker
	Pending int // Surfaces waiting on a debounced refresh
	Error   int // Failed refreshes
	Success int // Up to date surfaces
	Muted   int // Status bar, help
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Title:   5,
		Active:  4,
		Pending: 3,
		Error:   1,
		Success: 2,
		Muted:   8,
	}
}
