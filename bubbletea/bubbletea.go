// Package bubbletea provides the terminal chat UI for the coach.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/coach"
)

// ChatFunc sends text as the user's next message and streams the coach's
// reply, calling onDelta for each fragment. It blocks until the reply ends
// or ctx is cancelled. The session belongs to the ChatFunc while it runs.
type ChatFunc func(ctx context.Context, session *coach.Session, text string, onDelta func(string)) error

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. Cancelling ctx quits the program.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StreamEventMsg delivers a streaming event to the model.
type StreamEventMsg struct {
	Event coach.Event
}

// ReplyDoneMsg signals that the ChatFunc returned.
type ReplyDoneMsg struct {
	Err error
}
