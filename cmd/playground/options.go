package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/playground/config"
)

// options is the go-flags root: global flags plus one field per command.
type options struct {
	Global globalOptions `group:"Global Options"`

	Generate    generateCommand    `command:"generate" description:"Stream free-form text generation"`
	Summarize   summarizeCommand   `command:"summarize" description:"Stream a summary"`
	Ask         askCommand         `command:"ask" description:"Stream an answer from document collections"`
	Video       videoCommand       `command:"video" description:"Stream progress of a video generation job"`
	Models      modelsCommand      `command:"models" description:"List backend models"`
	Collections collectionsCommand `command:"collections" description:"List document collections"`
	Image       imageCommand       `command:"image" description:"Generate images"`
	Audio       audioCommand       `command:"audio" description:"Synthesize speech"`
	TUI         tuiCommand         `command:"tui" description:"Interactive playground"`
}

func newOptions(a *app) *options {
	o := &options{}
	o.Generate.app = a
	o.Summarize.app = a
	o.Ask.app = a
	o.Video.app = a
	o.Models.app = a
	o.Collections.app = a
	o.Image.app = a
	o.Audio.app = a
	o.TUI.app = a
	return o
}

type globalOptions struct {
	Config      string   `long:"config" description:"Config file (.toml, .yaml or .yml)"`
	BaseURL     string   `long:"base-url" description:"Backend base URL"`
	Provider    string   `long:"provider" description:"Text generator: backend, openai, anthropic or gemini"`
	Model       string   `long:"model" description:"Model ID"`
	Temperature *float64 `long:"temperature" description:"Sampling temperature in [0, 2]"`
	TopP        *float64 `long:"top-p" description:"Nucleus sampling in (0, 1]"`
	MaxTokens   *int     `long:"max-tokens" description:"Upper bound on generated tokens"`
	LogLevel    string   `long:"log-level" description:"trace, debug, info, warn, error or disabled"`
	Save        string   `long:"save" description:"Write the transcript as JSON to this path"`
	HTML        string   `long:"html" description:"Write the transcript as HTML to this path"`
	Gops        bool     `long:"gops" description:"Start the gops diagnostics agent"`
}

// apply overlays flags that were set on cfg.
func (g *globalOptions) apply(cfg config.Config) (config.Config, error) {
	if g.BaseURL != "" {
		cfg.BaseURL = g.BaseURL
	}
	if g.Provider != "" {
		p, err := config.ParseProvider(g.Provider)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Provider = p
	}
	if g.Model != "" {
		cfg.Params.Model = g.Model
	}
	if g.Temperature != nil {
		cfg.Params.Temperature = g.Temperature
	}
	if g.TopP != nil {
		cfg.Params.TopP = g.TopP
	}
	if g.MaxTokens != nil {
		cfg.Params.MaxTokens = *g.MaxTokens
	}
	if g.LogLevel != "" {
		lvl, err := config.ParseLevel(g.LogLevel)
		if err != nil {
			return config.Config{}, err
		}
		cfg.LogLevel = lvl
	}
	if err := cfg.Params.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid flags: %w", err)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return config.Config{}, fmt.Errorf("base URL must not be empty")
	}
	return cfg, nil
}
