package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/playground"
	"github.com/fwojciec/playground/goldmark"
)

var _ MessageBlock = (*ResponseBlock)(nil)

// ResponseBlock renders streamed content as markdown. Text up to the last
// paragraph break is stable: it is rendered once per width and cached, and
// only the tail is re-rendered as deltas arrive. Once the stream completes
// the whole content is stable.
type ResponseBlock struct {
	content strings.Builder
	theme   playground.Theme

	stable        string
	stableByWidth map[int]string
	done          bool
}

// NewResponseBlock creates an empty ResponseBlock.
func NewResponseBlock(theme playground.Theme) *ResponseBlock {
	return &ResponseBlock{
		theme:         theme,
		stableByWidth: make(map[int]string),
	}
}

// Append adds a content delta.
func (b *ResponseBlock) Append(text string) {
	if b.done {
		return
	}
	b.content.WriteString(text)
	b.advanceStable()
}

// Finish marks the content complete. Later deltas are ignored.
func (b *ResponseBlock) Finish() {
	if b.done {
		return
	}
	b.done = true
	if raw := strings.TrimRight(b.content.String(), "\n"); raw != b.stable {
		b.stable = raw
		clear(b.stableByWidth)
	}
}

// Content returns the raw accumulated text.
func (b *ResponseBlock) Content() string { return b.content.String() }

func (b *ResponseBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ResponseBlock) View(width int) string {
	head := b.renderStable(width)
	tail := b.tail()
	if tail == "" {
		return head
	}
	if strings.Count(tail, "```")%2 == 1 {
		// Close an open fence for display only.
		tail += "\n```"
	}
	rendered := goldmark.Render(tail, width, b.theme)
	if strings.TrimSpace(rendered) == "" {
		return head
	}
	if head == "" {
		return rendered
	}
	return strings.TrimRight(head, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// advanceStable moves the stable prefix to the last paragraph break that is
// not inside an open code fence.
func (b *ResponseBlock) advanceStable() {
	raw := b.content.String()
	end := len(raw)
	for {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		if candidate := raw[:idx]; strings.Count(candidate, "```")%2 == 0 {
			if candidate != b.stable {
				b.stable = candidate
				clear(b.stableByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *ResponseBlock) renderStable(width int) string {
	if width <= 0 || b.stable == "" {
		return ""
	}
	if cached, ok := b.stableByWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(b.stable, width, b.theme)
	b.stableByWidth[width] = rendered
	return rendered
}

func (b *ResponseBlock) tail() string {
	raw := b.content.String()
	if b.done {
		return ""
	}
	if b.stable == "" {
		return raw
	}
	return strings.TrimPrefix(raw, b.stable+"\n\n")
}
