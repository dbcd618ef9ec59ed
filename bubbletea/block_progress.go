package bubbletea

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

var _ MessageBlock = (*ProgressBlock)(nil)

// ProgressBlock shows the state of a long-running job and the artifacts it
// produced.
type ProgressBlock struct {
	status    string
	percent   float64 // 0-100
	artifacts []string
	bar       progress.Model
	styles    Styles
}

// NewProgressBlock creates a ProgressBlock.
func NewProgressBlock(styles Styles) *ProgressBlock {
	return &ProgressBlock{
		bar:    progress.New(progress.WithoutPercentage(), progress.WithSolidFill("5")),
		styles: styles,
	}
}

// Set records the latest status. Progress never moves backwards.
func (b *ProgressBlock) Set(status string, percent float64) {
	if status != "" {
		b.status = status
	}
	b.percent = max(b.percent, min(percent, 100))
}

// AddArtifact records a produced artifact.
func (b *ProgressBlock) AddArtifact(url string) {
	b.artifacts = append(b.artifacts, url)
}

func (b *ProgressBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ProgressBlock) View(width int) string {
	label := fmt.Sprintf(" %3.0f%%", b.percent)
	if b.status != "" {
		label += " " + b.status
	}
	label = runewidth.Truncate(label, max(width/2, 10), "…")

	bar := b.bar
	bar.Width = max(width-runewidth.StringWidth(label), 10)
	lines := []string{bar.ViewAs(b.percent/100) + b.styles.Muted.Render(label)}
	for _, a := range b.artifacts {
		lines = append(lines, b.styles.Success.Render("✓ ")+runewidth.Truncate(a, max(width-2, 1), "…"))
	}
	return strings.Join(lines, "\n")
}
