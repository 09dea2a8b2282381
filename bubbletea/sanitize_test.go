package bubbletea_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/coach"
	bt "github.com/fwojciec/coach/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text unchanged", in: "Squat with your chest up.", want: "Squat with your chest up."},
		{name: "emoji unchanged", in: "Great work! 💪", want: "Great work! 💪"},
		{name: "color codes", in: "\x1b[31mwarm up\x1b[0m first", want: "warm up first"},
		{name: "window title", in: "\x1b]0;pwned\x07Drink water", want: "Drink water"},
		{name: "tabs and newlines kept", in: "1.\tPlank\n2.\tBridge", want: "1.\tPlank\n2.\tBridge"},
		{name: "CRLF", in: "Rest\r\nRepeat\r\n", want: "Rest\nRepeat\n"},
		{name: "lone CR dropped", in: "10 reps\rdone", want: "10 repsdone"},
		{name: "bell and delete", in: "a\x07b\x7fc", want: "abc"},
		{name: "only escapes", in: "\x1b[1m\x1b[0m", want: ""},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, bt.Sanitize(tt.in))
		})
	}
}

func TestCoachBlock_StripsEscapes(t *testing.T) {
	t.Parallel()
	b := bt.NewCoachBlock(t0, fixedClock, coach.DefaultTheme(), bt.NewStyles(coach.DefaultTheme()))
	b.Append("\x1b]0;gotcha\x07Hold the plank.")

	out := b.View(40)
	assert.Contains(t, stripANSI(out), "Hold the plank.")
	assert.False(t, strings.Contains(out, "gotcha"))
	assert.Equal(t, "\x1b]0;gotcha\x07Hold the plank.", b.Text(), "raw text is kept for the session")
}
