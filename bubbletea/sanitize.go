package bubbletea

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// sanitize makes message text safe to draw. Escape sequences are stripped so
// a reply cannot restyle or retitle the terminal. CRLF becomes LF and every
// other control character except tab and newline is dropped, stray carriage
// returns included.
func sanitize(s string) string {
	if !needsSanitize(s) {
		return s
	}
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r > 0x1F && r != 0x7F {
			return r
		}
		return -1
	}, s)
}

func needsSanitize(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 && c != '\t' && c != '\n' || c == 0x7F {
			return true
		}
	}
	return false
}
