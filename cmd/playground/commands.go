package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fwojciec/playground"
	bt "github.com/fwojciec/playground/bubbletea"
	pgjson "github.com/fwojciec/playground/json"
)

type generateCommand struct {
	app *app

	System     string `long:"system" description:"System prompt"`
	SystemFile string `long:"system-file" description:"Read the system prompt from a file"`
}

func (c *generateCommand) Execute(args []string) error {
	prompt, err := readInput(args, c.app.in)
	if err != nil {
		return err
	}
	system := c.System
	if c.SystemFile != "" {
		data, err := os.ReadFile(c.SystemFile)
		if err != nil {
			return fmt.Errorf("read system prompt: %w", err)
		}
		system = string(data)
	}
	return c.app.stream(c.app.ctx, playground.KindGenerate, prompt, streamOptions{System: system})
}

type summarizeCommand struct {
	app *app

	Length string   `long:"length" choice:"short" choice:"medium" choice:"long" description:"Summary length (default: medium)"`
	Files  []string `long:"files" description:"Summarize files matching a doublestar glob (repeatable)"`
}

func (c *summarizeCommand) Execute(args []string) error {
	var (
		text string
		err  error
	)
	if len(c.Files) > 0 {
		text, err = readFiles(c.Files)
	} else {
		text, err = readInput(args, c.app.in)
	}
	if err != nil {
		return err
	}
	return c.app.stream(c.app.ctx, playground.KindSummarize, text, streamOptions{Length: playground.SummaryLength(c.Length)})
}

type askCommand struct {
	app *app

	Collections []string `long:"collection" short:"c" description:"Collection to search (repeatable; default: configured collections)"`
	TopK        int      `long:"top-k" description:"Number of passages to retrieve"`
}

func (c *askCommand) Execute(args []string) error {
	question, err := readInput(args, c.app.in)
	if err != nil {
		return err
	}
	return c.app.stream(c.app.ctx, playground.KindQuery, question, streamOptions{Collections: c.Collections, TopK: c.TopK})
}

type videoCommand struct {
	app *app

	Duration   int    `long:"duration" description:"Video length in seconds"`
	Resolution string `long:"resolution" description:"e.g. 1280x720"`
}

func (c *videoCommand) Execute(args []string) error {
	prompt, err := readInput(args, c.app.in)
	if err != nil {
		return err
	}
	return c.app.stream(c.app.ctx, playground.KindVideo, prompt, streamOptions{Duration: c.Duration, Resolution: c.Resolution})
}

type modelsCommand struct {
	app *app
}

func (c *modelsCommand) Execute([]string) error {
	models, err := c.app.catalog.Models(c.app.ctx)
	if err != nil {
		return err
	}
	t := newTable("ID", "NAME", "TYPE", "DESCRIPTION")
	for _, m := range models {
		t.Row(m.ID, m.Name, m.Kind, m.Description)
	}
	fmt.Fprintln(c.app.out, t.String())
	return nil
}

type collectionsCommand struct {
	app *app
}

func (c *collectionsCommand) Execute([]string) error {
	collections, err := c.app.catalog.Collections(c.app.ctx)
	if err != nil {
		return err
	}
	t := newTable("NAME", "DOCUMENTS", "TAGS")
	for _, col := range collections {
		t.Row(col.Name, strconv.Itoa(col.Documents), strings.Join(col.Tags, ", "))
	}
	fmt.Fprintln(c.app.out, t.String())
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Headers(headers...)
}

type imageCommand struct {
	app *app

	Size  string `long:"size" description:"e.g. 1024x1024"`
	Count int    `long:"count" short:"n" description:"Number of images"`
	Out   string `long:"out" short:"o" default:"." description:"Directory for inline images"`
}

func (c *imageCommand) Execute(args []string) error {
	prompt, err := readInput(args, c.app.in)
	if err != nil {
		return err
	}
	images, err := c.app.media.GenerateImage(c.app.ctx, playground.ImageRequest{
		Prompt: prompt,
		Size:   c.Size,
		Count:  c.Count,
		Params: c.app.cfg.Params,
	})
	if err != nil {
		return err
	}
	for i, img := range images {
		if len(img.Data) == 0 {
			fmt.Fprintln(c.app.out, img.URL)
			continue
		}
		path := filepath.Join(c.Out, fmt.Sprintf("image-%d%s", i+1, extension(img.MimeType, ".png")))
		if err := os.WriteFile(path, img.Data, 0o644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		fmt.Fprintln(c.app.out, path)
	}
	return nil
}

type audioCommand struct {
	app *app

	Voice  string `long:"voice" description:"Voice name"`
	Format string `long:"format" description:"Audio format, e.g. mp3"`
	Out    string `long:"out" short:"o" description:"Output file (default: speech.<ext>); - writes base64 to stdout"`
}

func (c *audioCommand) Execute(args []string) error {
	text, err := readInput(args, c.app.in)
	if err != nil {
		return err
	}
	audio, err := c.app.media.GenerateAudio(c.app.ctx, playground.AudioRequest{
		Text:   text,
		Voice:  c.Voice,
		Format: c.Format,
		Params: c.app.cfg.Params,
	})
	if err != nil {
		return err
	}
	if c.Out == "-" {
		fmt.Fprintln(c.app.out, base64.StdEncoding.EncodeToString(audio.Data))
		return nil
	}
	path := c.Out
	if path == "" {
		path = "speech" + extension(audio.MimeType, ".mp3")
	}
	if err := os.WriteFile(path, audio.Data, 0o644); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	fmt.Fprintf(c.app.out, "%s (%.1fs)\n", path, audio.Duration)
	return nil
}

// extension picks a file extension for a MIME type.
func extension(mimeType, fallback string) string {
	switch mimeType {
	case "audio/mpeg":
		return ".mp3"
	case "image/jpeg":
		return ".jpg"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return fallback
}

type tuiCommand struct {
	app *app

	Mode    string   `long:"mode" choice:"generate" choice:"summarize" choice:"ask" choice:"video" default:"generate" description:"What each prompt runs"`
	System  string   `long:"system" description:"System prompt for generate"`
	History []string `long:"history" description:"Transcript JSON to show on start (repeatable)"`
}

func (c *tuiCommand) Execute([]string) error {
	kind := playground.Kind(c.Mode)
	if c.Mode == "ask" {
		kind = playground.KindQuery
	}

	var history []playground.Transcript
	for _, path := range c.History {
		t, err := pgjson.Load(path)
		if err != nil {
			return fmt.Errorf("load history %s: %w", path, err)
		}
		history = append(history, t)
	}

	var last playground.Transcript
	run := func(ctx context.Context, input string, onEvent func(playground.Event)) error {
		t, err := c.app.execute(ctx, kind, input, streamOptions{System: c.System}, onEvent)
		last = t
		return err
	}

	m := bt.New(run, playground.DefaultTheme(), bt.Config{
		Mode:    c.Mode,
		Model:   c.app.cfg.Params.Model,
		History: history,
	})
	if _, err := bt.Run(c.app.ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	if last.ID == "" {
		return nil
	}
	return c.app.export(last)
}
