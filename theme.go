package coach

// Theme maps chat roles to ANSI palette indices (0-15). A negative index
// means no color. The terminal's own palette decides the final shade.
type Theme struct {
	UserMsg int
	Coach   int
	Prompt  int // quick-prompt chips
	Error   int
	Success int // "Online" line
	Muted   int // timestamps, status bar, code gutters
	Accent  int // headings and inline code
}

// DefaultTheme returns the palette used by the chat window.
func DefaultTheme() Theme {
	return Theme{
		UserMsg: 4,
		Coach:   6,
		Prompt:  3,
		Error:   1,
		Success: 2,
		Muted:   8,
		Accent:  5,
	}
}
