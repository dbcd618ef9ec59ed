package bubbletea

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/playground"
	"github.com/fwojciec/playground/ansi"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders the error that ended a run.
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
	label := "Error"
	switch {
	case errors.Is(b.err, playground.ErrTimeout):
		label = "Timed out"
	case errors.Is(b.err, playground.ErrValidation):
		label = "Invalid request"
	}
	content := b.styles.Error.Render(ansi.Sanitize(fmt.Sprintf("%s: %v", label, b.err)))
	return lipgloss.NewStyle().Width(width).Render(content)
}
