// Package bubbletea provides an interactive Bubble Tea playground: a prompt,
// the streamed response and a live status line.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/playground"
)

// RunFunc performs one streaming call for input. onEvent is called for each
// event of the stream. The function blocks until the stream ends and returns
// the error reported through the stream's onError, if any.
type RunFunc func(ctx context.Context, input string, onEvent func(playground.Event)) error

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) (Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		m = fm
	}
	return m, err
}

// StreamEventMsg wraps a streaming event for delivery to the model.
type StreamEventMsg struct {
	Event playground.Event
}

// RunDoneMsg signals that a run has ended.
type RunDoneMsg struct {
	Err error
}
