package bubbletea

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/coach"
	"github.com/fwojciec/coach/goldmark"
)

var _ MessageBlock = (*CoachBlock)(nil)

// CoachBlock renders the coach's reply as markdown under a "Coach" label.
// While the reply streams, paragraphs that are already closed by a blank
// line are rendered once per width and cached; only the open tail is
// rendered again on each delta.
type CoachBlock struct {
	content strings.Builder
	theme   coach.Theme
	styles  Styles
	at      time.Time
	now     Clock
	partial bool

	settled        string
	settledByWidth map[int]string
}

// NewCoachBlock creates a block for a reply that started at at.
func NewCoachBlock(at time.Time, now Clock, theme coach.Theme, styles Styles) *CoachBlock {
	return &CoachBlock{
		theme:          theme,
		styles:         styles,
		at:             at,
		now:            now,
		settledByWidth: make(map[int]string),
	}
}

// Append adds a reply fragment.
func (b *CoachBlock) Append(delta string) {
	b.content.WriteString(delta)
	b.settle()
}

// Text returns the reply received so far.
func (b *CoachBlock) Text() string { return b.content.String() }

// MarkPartial labels the reply as cut short.
func (b *CoachBlock) MarkPartial() { b.partial = true }

func (b *CoachBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *CoachBlock) View(width int) string {
	label := b.styles.Coach.Render("Coach") + b.styles.Muted.Render(" · "+Ago(b.at, b.now()))
	if b.partial {
		label += b.styles.Muted.Render(" · incomplete")
	}
	body := b.renderBody(width)
	if body == "" {
		return label
	}
	return label + "\n" + body
}

func (b *CoachBlock) renderBody(width int) string {
	head := b.renderSettled(width)
	tail := b.tail()
	if hasUnclosedFence(tail) {
		tail += "\n```"
	}
	var tailOut string
	if strings.TrimSpace(tail) != "" {
		tailOut = goldmark.Render(sanitize(tail), width, b.theme)
	}
	switch {
	case strings.TrimSpace(tailOut) == "":
		return head
	case head == "":
		return tailOut
	default:
		return strings.TrimRight(head, "\n") + "\n\n" + strings.TrimLeft(tailOut, "\n")
	}
}

// settle moves the settled prefix forward to the last blank line that is
// not inside a fenced code block.
func (b *CoachBlock) settle() {
	raw := b.content.String()
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		if prefix := raw[:idx]; !hasUnclosedFence(prefix) {
			if prefix != b.settled {
				b.settled = prefix
				clear(b.settledByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *CoachBlock) renderSettled(width int) string {
	if width <= 0 || b.settled == "" {
		return ""
	}
	if out, ok := b.settledByWidth[width]; ok {
		return out
	}
	out := goldmark.Render(sanitize(b.settled), width, b.theme)
	b.settledByWidth[width] = out
	return out
}

func (b *CoachBlock) tail() string {
	if b.settled == "" {
		return b.content.String()
	}
	return strings.TrimPrefix(b.content.String(), b.settled+"\n\n")
}

// hasUnclosedFence counts triple backticks. Backticks inside inline code
// spans are miscounted.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
