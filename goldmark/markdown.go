// Package goldmark renders markdown produced by the models: ANSI-styled text
// for the terminal (goldmark parser, lipgloss styles) and HTML for export
// (goldmark's HTML renderer).
package goldmark

import (
	"bytes"
	"fmt"

	"github.com/fwojciec/playground"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdown is shared by both renderers so that the terminal and the export
// agree on what is a table, a strikethrough or a task list.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow.
func Render(source string, width int, theme playground.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}

// RenderHTML converts markdown source to an HTML fragment. Raw HTML in the
// source is omitted rather than passed through.
func RenderHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("goldmark: %w", err)
	}
	return buf.String(), nil
}
