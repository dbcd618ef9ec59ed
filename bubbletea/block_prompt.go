package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*PromptBlock)(nil)

// PromptBlock echoes the submitted input with a "> " prefix.
type PromptBlock struct {
	text   string
	styles Styles
}

// NewPromptBlock creates a PromptBlock.
func NewPromptBlock(text string, styles Styles) *PromptBlock {
	return &PromptBlock{text: text, styles: styles}
}

func (b *PromptBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *PromptBlock) View(width int) string {
	content := b.styles.Prompt.Render("> ") + b.text
	return lipgloss.NewStyle().Width(width).Render(content)
}
