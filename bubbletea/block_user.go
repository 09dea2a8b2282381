package bubbletea

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rivo/uniseg"
)

var _ MessageBlock = (*UserMessageBlock)(nil)

// UserMessageBlock renders a user message right-aligned, wrapped to three
// quarters of the width, under a "You" label.
type UserMessageBlock struct {
	text   string
	at     time.Time
	now    Clock
	styles Styles
}

// NewUserMessageBlock creates a UserMessageBlock sent at at.
func NewUserMessageBlock(text string, at time.Time, now Clock, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{text: text, at: at, now: now, styles: styles}
}

func (b *UserMessageBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *UserMessageBlock) View(width int) string {
	var out strings.Builder
	label := "You · " + Ago(b.at, b.now())
	out.WriteString(padLeft(b.styles.Muted.Render(label), uniseg.StringWidth(label), width))
	for _, line := range wrapLines(sanitize(b.text), max(width*3/4, 1)) {
		out.WriteString("\n")
		out.WriteString(padLeft(b.styles.UserMsg.Render(line), uniseg.StringWidth(line), width))
	}
	return out.String()
}

// padLeft right-aligns styled, whose visible width is w, within width.
func padLeft(styled string, w, width int) string {
	if w >= width {
		return styled
	}
	return strings.Repeat(" ", width-w) + styled
}
