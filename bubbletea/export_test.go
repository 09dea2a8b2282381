package bubbletea

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// WrapLines exports wrapLines for testing.
var WrapLines = wrapLines

// SetRunning is a test helper that puts the model in a running state with a
// cancel function.
func SetRunning(m Model, cancel func()) Model {
	m.running = true
	m.cancel = cancel
	return m
}

// Sanitize exports sanitize for testing.
var Sanitize = sanitize
