package bubbletea_test

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/coach"
	bt "github.com/fwojciec/coach/bubbletea"
	"github.com/fwojciec/coach/canned"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return t0 }

func newModel(send bt.ChatFunc, session *coach.Session) bt.Model {
	return bt.New(send, session, coach.DefaultTheme(),
		bt.WithQuickPrompts(canned.QuickPrompts),
		bt.WithClock(fixedClock),
	)
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, send bt.ChatFunc) bt.Model {
	t.Helper()
	return initModelWithSession(t, send, &coach.Session{})
}

func initModelWithSession(t *testing.T, send bt.ChatFunc, session *coach.Session) bt.Model {
	t.Helper()
	return updateModel(t, newModel(send, session), tea.WindowSizeMsg{Width: 80, Height: 24})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

func altKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}
}

// nopChat is a ChatFunc that replies with nothing.
func nopChat(context.Context, *coach.Session, string, func(string)) error {
	return nil
}
