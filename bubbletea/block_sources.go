package bubbletea

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/playground"
	"github.com/mattn/go-runewidth"
)

var _ MessageBlock = (*SourcesBlock)(nil)

// SourcesBlock lists the references supporting an answer. It starts
// collapsed, showing the count and the first title.
type SourcesBlock struct {
	sources   []playground.Source
	collapsed bool
	styles    Styles
}

// NewSourcesBlock creates a collapsed SourcesBlock.
func NewSourcesBlock(styles Styles) *SourcesBlock {
	return &SourcesBlock{collapsed: true, styles: styles}
}

// Add appends sources.
func (b *SourcesBlock) Add(sources []playground.Source) {
	b.sources = append(b.sources, sources...)
}

// Len returns the number of sources.
func (b *SourcesBlock) Len() int { return len(b.sources) }

func (b *SourcesBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *SourcesBlock) View(width int) string {
	noun := "sources"
	if len(b.sources) == 1 {
		noun = "source"
	}
	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	header := fmt.Sprintf("%s %d %s", indicator, len(b.sources), noun)
	if b.collapsed {
		if len(b.sources) > 0 {
			header += "  " + title(b.sources[0])
		}
		return b.styles.Source.Render(runewidth.Truncate(header, width, "…"))
	}

	lines := []string{b.styles.Source.Render(runewidth.Truncate(header, width, "…"))}
	for i, s := range b.sources {
		line := fmt.Sprintf("  [%d] %s", i+1, title(s))
		if s.Score > 0 {
			line += fmt.Sprintf(" (%.2f)", s.Score)
		}
		lines = append(lines, runewidth.Truncate(line, width, "…"))
		if s.URI != "" && s.URI != title(s) {
			lines = append(lines, b.styles.Muted.Render(runewidth.Truncate("      "+s.URI, width, "…")))
		}
		if s.Snippet != "" {
			snippet := strings.Join(strings.Fields(s.Snippet), " ")
			lines = append(lines, b.styles.Muted.Render(runewidth.Truncate("      "+snippet, width, "…")))
		}
	}
	return strings.Join(lines, "\n")
}

func title(s playground.Source) string {
	switch {
	case s.Title != "":
		return s.Title
	case s.URI != "":
		return s.URI
	case s.ID != "":
		return s.ID
	}
	return "untitled"
}
