package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/coach"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	Title   lipgloss.Style
	UserMsg lipgloss.Style
	Coach   lipgloss.Style
	Prompt  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t coach.Theme) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true),
		UserMsg: lipgloss.NewStyle().Foreground(ansiColor(t.UserMsg)),
		Coach:   lipgloss.NewStyle().Foreground(ansiColor(t.Coach)).Bold(true),
		Prompt:  lipgloss.NewStyle().Foreground(ansiColor(t.Prompt)),
		Error:   lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success: lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:   lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:  lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
