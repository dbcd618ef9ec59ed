package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/playground"
	"github.com/fwojciec/playground/ansi"
	"github.com/fwojciec/playground/backend"
	"github.com/fwojciec/playground/config"
	"github.com/fwojciec/playground/goldmark"
	pgjson "github.com/fwojciec/playground/json"
	"github.com/google/gops/agent"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// app holds what every command needs once global flags are resolved.
type app struct {
	ctx    context.Context
	getenv func(string) string
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg    config.Config
	logger zerolog.Logger
	save   string
	html   string

	generator  playground.Generator
	summarizer playground.Summarizer
	answerer   playground.Answerer
	video      playground.VideoGenerator
	catalog    playground.Catalog
	media      playground.MediaGenerator

	closers []func()
}

// setup resolves configuration in order of precedence: defaults, config file,
// environment, flags.
func (a *app) setup(ctx context.Context, g *globalOptions) error {
	cfg, err := a.loadConfig(g.Config)
	if err != nil {
		return err
	}
	if cfg, err = config.ApplyEnv(cfg, a.getenv); err != nil {
		return err
	}
	if cfg, err = g.apply(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	a.save = g.Save
	a.html = g.HTML

	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.errOut, TimeFormat: time.RFC3339}).
		Level(cfg.LogLevel).
		With().Timestamp().Str("app", "playground").Logger()

	if g.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			return fmt.Errorf("start gops agent: %w", err)
		}
		a.closers = append(a.closers, agent.Close)
		a.logger.Debug().Msg("gops agent listening")
	}

	client := backend.New(cfg.BaseURL,
		backend.WithLogger(a.logger.With().Str("component", "backend").Logger()),
		backend.WithTimeouts(cfg.Timeouts),
		backend.WithStopOnComplete(cfg.StopOnComplete),
	)
	keys := apiKeys{
		OpenAI:    a.getenv("OPENAI_API_KEY"),
		Anthropic: a.getenv("ANTHROPIC_API_KEY"),
		Gemini:    a.getenv("GEMINI_API_KEY"),
	}
	a.generator, err = resolveGenerator(ctx, cfg.Provider, keys, generatorOptions{
		backend: client,
		model:   cfg.Params.Model,
		idle:    cfg.Timeouts.Idle,
		logger:  a.logger.With().Str("component", cfg.Provider).Logger(),
	})
	if err != nil {
		return err
	}
	a.summarizer, a.answerer, a.video = client, client, client
	a.catalog, a.media = client, client
	a.logger.Debug().Str("provider", cfg.Provider).Str("base_url", cfg.BaseURL).Msg("configured")
	return nil
}

// loadConfig reads path, or the default location when path is empty. Only a
// missing default file is tolerated.
func (a *app) loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.Load(config.DefaultPath())
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// streamOptions carries the per-kind request fields that are not the input.
type streamOptions struct {
	System      string
	Length      playground.SummaryLength
	Collections []string
	TopK        int
	Duration    int
	Resolution  string
}

// execute performs one streaming call of the given kind and returns what was
// recorded. The returned error is the one reported through onError, if any.
func (a *app) execute(ctx context.Context, kind playground.Kind, input string, so streamOptions, onEvent func(playground.Event)) (playground.Transcript, error) {
	params := a.cfg.Params
	rec := playground.NewRecorder(playground.Transcript{
		ID:     uuid.NewString(),
		Kind:   kind,
		Input:  input,
		Params: params,
	}, playground.WithEventHandler(onEvent))

	var streamErr error
	onError := func(err error) {
		streamErr = err
		rec.Fail(err)
	}

	log := a.logger.With().Str("kind", string(kind)).Logger()
	log.Debug().Msg("stream started")
	switch kind {
	case playground.KindGenerate:
		req := playground.GenerateRequest{Prompt: input, SystemPrompt: so.System, Params: params}
		a.generator.Generate(ctx, req, playground.Record[playground.GenerationChunk](rec), onError)
	case playground.KindSummarize:
		req := playground.SummarizeRequest{Text: input, Length: so.Length, Params: params}
		a.summarizer.Summarize(ctx, req, playground.Record[playground.SummaryChunk](rec), onError)
	case playground.KindQuery:
		collections := so.Collections
		if len(collections) == 0 {
			collections = a.cfg.Collections
		}
		req := playground.QueryRequest{Question: input, Collections: collections, TopK: so.TopK, Params: params}
		a.answerer.Query(ctx, req, playground.Record[playground.AnswerChunk](rec), onError)
	case playground.KindVideo:
		req := playground.VideoRequest{Prompt: input, DurationSeconds: so.Duration, Resolution: so.Resolution, Params: params}
		a.video.GenerateVideo(ctx, req, playground.Record[playground.VideoChunk](rec), onError)
	default:
		return playground.Transcript{}, fmt.Errorf("unknown kind %q", kind)
	}

	t := rec.Finish()
	log.Debug().Stringer("state", t.State).Int("chunks", t.Chunks).Msg("stream ended")
	return t, streamErr
}

// stream runs one call printing content to stdout as it arrives, then
// reports the outcome and exports the transcript.
func (a *app) stream(ctx context.Context, kind playground.Kind, input string, so streamOptions) error {
	t, err := a.execute(ctx, kind, input, so, a.printEvent)
	a.report(t)
	if exportErr := a.export(t); exportErr != nil {
		return errors.Join(err, exportErr)
	}
	return err
}

func (a *app) printEvent(evt playground.Event) {
	switch e := evt.(type) {
	case playground.EventContent:
		fmt.Fprint(a.out, ansi.Sanitize(e.Delta))
	case playground.EventProgress:
		fmt.Fprintf(a.errOut, "[%3.0f%%] %s\n", e.Percent, ansi.Sanitize(e.Status))
	case playground.EventArtifact:
		fmt.Fprintln(a.out, ansi.Sanitize(e.URL))
	}
}

// report prints sources and metrics to stderr.
func (a *app) report(t playground.Transcript) {
	if t.Content != "" && !strings.HasSuffix(t.Content, "\n") {
		fmt.Fprintln(a.out)
	}
	for i, s := range t.Sources {
		line := fmt.Sprintf("[%d] %s", i+1, sourceTitle(s))
		if s.URI != "" && s.URI != sourceTitle(s) {
			line += " <" + s.URI + ">"
		}
		fmt.Fprintln(a.errOut, ansi.Sanitize(line))
	}

	var parts []string
	if t.Usage != nil {
		parts = append(parts, fmt.Sprintf("%d tokens", t.Usage.Total()))
	}
	if t.Elapsed > 0 {
		parts = append(parts, t.Elapsed.String())
	}
	if t.Confidence != nil {
		parts = append(parts, fmt.Sprintf("confidence %.0f%%", *t.Confidence*100))
	}
	if len(parts) > 0 {
		fmt.Fprintln(a.errOut, strings.Join(parts, " · "))
	}
}

// export writes the transcript to the --save and --html destinations.
func (a *app) export(t playground.Transcript) error {
	if a.save != "" {
		if err := pgjson.Save(a.save, t); err != nil {
			return fmt.Errorf("save transcript: %w", err)
		}
		a.logger.Info().Str("path", a.save).Msg("transcript saved")
	}
	if a.html != "" {
		f, err := os.Create(a.html)
		if err != nil {
			return fmt.Errorf("export html: %w", err)
		}
		if err := goldmark.ExportHTML(f, t); err != nil {
			f.Close()
			return fmt.Errorf("export html: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("export html: %w", err)
		}
		a.logger.Info().Str("path", a.html).Msg("html exported")
	}
	return nil
}

func sourceTitle(s playground.Source) string {
	switch {
	case s.Title != "":
		return s.Title
	case s.URI != "":
		return s.URI
	}
	return s.ID
}
