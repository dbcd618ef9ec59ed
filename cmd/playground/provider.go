package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/playground"
	"github.com/fwojciec/playground/anthropic"
	"github.com/fwojciec/playground/backend"
	"github.com/fwojciec/playground/config"
	"github.com/fwojciec/playground/gemini"
	"github.com/fwojciec/playground/openai"
	"github.com/rs/zerolog"
)

// apiKeys holds provider credentials. They are read from the environment in
// setup and passed here as values.
type apiKeys struct {
	OpenAI    string
	Anthropic string
	Gemini    string
}

// generatorOptions carries what the provider clients share.
type generatorOptions struct {
	backend *backend.Client
	model   string
	idle    time.Duration
	logger  zerolog.Logger
}

// resolveGenerator selects the text generator for provider.
func resolveGenerator(ctx context.Context, provider string, keys apiKeys, opts generatorOptions) (playground.Generator, error) {
	switch provider {
	case config.ProviderBackend:
		return opts.backend, nil
	case config.ProviderOpenAI:
		if keys.OpenAI == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		o := []openai.Option{openai.WithLogger(opts.logger), openai.WithIdleTimeout(opts.idle)}
		if opts.model != "" {
			o = append(o, openai.WithModel(opts.model))
		}
		return openai.New(keys.OpenAI, o...), nil
	case config.ProviderAnthropic:
		if keys.Anthropic == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		return anthropic.New(keys.Anthropic, anthropic.WithLogger(opts.logger), anthropic.WithIdleTimeout(opts.idle)), nil
	case config.ProviderGemini:
		if keys.Gemini == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set")
		}
		o := []gemini.Option{gemini.WithLogger(opts.logger)}
		if opts.model != "" {
			o = append(o, gemini.WithModel(opts.model))
		}
		return gemini.New(ctx, keys.Gemini, o...)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
