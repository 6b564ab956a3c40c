package bubbletea

// TruncateLeft exports truncateLeft for testing.
func TruncateLeft(s string, width int) string {
	return truncateLeft(s, width)
}

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}
