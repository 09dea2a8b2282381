package goldmark

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var stepMarker = regexp.MustCompile(`(?:^|\s)(\d{1,2})\) `)

// expandSteps rewrites lines that enumerate steps inline ("focus on: 1) chest
// up, 2) knees out") into a lead paragraph and an ordered list. Text after
// the first sentence of the last step becomes a trailing paragraph. Fenced
// and indented code is left alone.
func expandSteps(src string) string {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	fenced := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fenced = !fenced
			out = append(out, line)
			continue
		}
		if fenced || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			out = append(out, line)
			continue
		}
		out = append(out, splitSteps(line)...)
	}
	return strings.Join(out, "\n")
}

func splitSteps(line string) []string {
	var starts, bodies []int
	want := 1
	for _, loc := range stepMarker.FindAllStringSubmatchIndex(line, -1) {
		n, _ := strconv.Atoi(line[loc[2]:loc[3]])
		if n != want {
			if want == 1 {
				continue
			}
			break
		}
		starts = append(starts, loc[2])
		bodies = append(bodies, loc[1])
		want++
	}
	if len(starts) < 2 {
		return []string{line}
	}

	var out []string
	if lead := strings.TrimSpace(line[:starts[0]]); lead != "" {
		out = append(out, lead, "")
	}
	var tail string
	for i := range starts {
		var item string
		if i+1 < len(starts) {
			item = strings.TrimSpace(line[bodies[i]:starts[i+1]])
			item = strings.TrimSpace(strings.TrimSuffix(item, ","))
		} else {
			item, tail = firstSentence(strings.TrimSpace(line[bodies[i]:]))
		}
		out = append(out, fmt.Sprintf("%d. %s", i+1, item))
	}
	if tail != "" {
		out = append(out, "", tail)
	}
	return out
}

// firstSentence splits s after its first sentence-ending punctuation.
func firstSentence(s string) (head, rest string) {
	for i := 0; i+1 < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if s[i+1] == ' ' {
				return s[:i+1], strings.TrimSpace(s[i+1:])
			}
		}
	}
	return s, ""
}
