package bubbletea

import (
	"strings"

	"github.com/rivo/uniseg"
)

// wrapLines word-wraps s to width display cells. Existing line breaks are
// kept. Words wider than width are broken between grapheme clusters so
// emoji and wide runes are never split.
func wrapLines(s string, width int) []string {
	if width <= 0 {
		return strings.Split(s, "\n")
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		out = append(out, wrapParagraph(para, width)...)
	}
	return out
}

func wrapParagraph(para string, width int) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}

	var (
		lines []string
		line  strings.Builder
		lineW int
	)
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineW = 0
	}
	for _, w := range words {
		ww := uniseg.StringWidth(w)
		if lineW > 0 && lineW+1+ww <= width {
			line.WriteByte(' ')
			line.WriteString(w)
			lineW += 1 + ww
			continue
		}
		if lineW > 0 {
			flush()
		}
		for ww > width {
			head, rest, headW := splitWidth(w, width)
			line.WriteString(head)
			lineW = headW
			flush()
			w, ww = rest, ww-headW
		}
		line.WriteString(w)
		lineW = ww
	}
	if lineW > 0 || line.Len() > 0 {
		flush()
	}
	return lines
}

// splitWidth returns the longest prefix of s that fits in width cells. At
// least one grapheme cluster is returned so progress is always made.
func splitWidth(s string, width int) (head, rest string, headW int) {
	state := -1
	rest = s
	for rest != "" {
		_, r, w, st := uniseg.FirstGraphemeClusterInString(rest, state)
		if headW+w > width && headW > 0 {
			break
		}
		headW += w
		rest, state = r, st
	}
	return s[:len(s)-len(rest)], rest, headW
}
