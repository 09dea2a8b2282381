// Package goldmark renders coach replies to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
package goldmark

import "github.com/fwojciec/coach"

// Render parses markdown source and returns ANSI-styled terminal output
// wrapped to width. Inline enumerations such as "1) warm up, 2) lift" are
// laid out as ordered lists first. Code blocks are never reflowed.
func Render(source string, width int, theme coach.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return r.render([]byte(expandSteps(source)), width)
}
