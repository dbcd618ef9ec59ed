package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/playground"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	Prompt  lipgloss.Style
	Content lipgloss.Style
	Source  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t playground.Theme) Styles {
	return Styles{
		Prompt:  lipgloss.NewStyle().Foreground(ansiColor(t.Prompt)).Bold(true),
		Content: lipgloss.NewStyle().Foreground(ansiColor(t.Content)),
		Source:  lipgloss.NewStyle().Foreground(ansiColor(t.Source)),
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
