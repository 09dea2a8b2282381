package bubbletea

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/coach"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders a failed reply.
type ErrorBlock struct {
	err    error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{err: err, styles: styles}
}

func (b *ErrorBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	content := b.styles.Error.Render("⚠ "+Describe(b.err)) + "\n" + b.styles.Muted.Render(b.err.Error())
	return lipgloss.NewStyle().Width(width).Render(content)
}

// Describe turns a reply failure into a sentence for the user.
func Describe(err error) string {
	switch {
	case errors.Is(err, coach.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "The coach took too long to answer."
	case errors.Is(err, coach.ErrTransportRejected), errors.Is(err, coach.ErrNoBody):
		return "Couldn't reach the coach."
	case errors.Is(err, coach.ErrStreamInterrupted):
		return "The reply was cut off."
	case errors.Is(err, coach.ErrUpstream):
		return "The coach ran into a problem."
	case errors.Is(err, coach.ErrValidation):
		return "That message couldn't be sent."
	default:
		return "Something went wrong."
	}
}
