// Package config loads playground settings from a TOML or YAML file and
// applies environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/playground"
	"github.com/fwojciec/playground/backend"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Providers that can serve text generation.
const (
	ProviderBackend   = "backend"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvBaseURL  = "PLAYGROUND_BASE_URL"
	EnvProvider = "PLAYGROUND_PROVIDER"
	EnvModel    = "PLAYGROUND_MODEL"
	EnvLogLevel = "PLAYGROUND_LOG_LEVEL"
)

// Config holds resolved settings.
type Config struct {
	BaseURL        string
	Provider       string
	Params         playground.Params
	LogLevel       zerolog.Level
	Timeouts       backend.Timeouts
	StopOnComplete bool
	Collections    []string
}

// Default returns the settings used when no file or environment overrides
// are present.
func Default() Config {
	return Config{
		BaseURL:  "http://localhost:8000",
		Provider: ProviderBackend,
		LogLevel: zerolog.InfoLevel,
		Timeouts: backend.DefaultTimeouts(),
	}
}

// DefaultPath returns the config file looked up when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "playground", "config.toml")
}

// fileConfig mirrors the file format. Pointer fields distinguish "absent"
// from the zero value.
type fileConfig struct {
	BaseURL        *string       `toml:"base_url" yaml:"base_url"`
	Provider       *string       `toml:"provider" yaml:"provider"`
	Model          *string       `toml:"model" yaml:"model"`
	Temperature    *float64      `toml:"temperature" yaml:"temperature"`
	MaxTokens      *int          `toml:"max_tokens" yaml:"max_tokens"`
	TopP           *float64      `toml:"top_p" yaml:"top_p"`
	LogLevel       *string       `toml:"log_level" yaml:"log_level"`
	Timeouts       *fileTimeouts `toml:"timeouts" yaml:"timeouts"`
	IdleTimeout    *string       `toml:"idle_timeout" yaml:"idle_timeout"`
	StopOnComplete *bool         `toml:"stop_on_complete" yaml:"stop_on_complete"`
	Collections    []string      `toml:"collections" yaml:"collections"`
}

type fileTimeouts struct {
	Generate  *string `toml:"generate" yaml:"generate"`
	Summarize *string `toml:"summarize" yaml:"summarize"`
	Query     *string `toml:"query" yaml:"query"`
	Video     *string `toml:"video" yaml:"video"`
	Media     *string `toml:"media" yaml:"media"`
	Metadata  *string `toml:"metadata" yaml:"metadata"`
}

// Load reads the file at path on top of [Default]. The format is chosen by
// extension: .toml, or .yaml/.yml. A missing file yields an error wrapping
// os.ErrNotExist.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	var raw fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		meta, err := toml.Decode(string(data), &raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("config: %s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported file type %q", ext)
	}

	cfg := Default()
	if err := raw.apply(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (f fileConfig) apply(cfg *Config) error {
	if f.BaseURL != nil {
		cfg.BaseURL = strings.TrimSpace(*f.BaseURL)
	}
	if f.Provider != nil {
		p, err := ParseProvider(*f.Provider)
		if err != nil {
			return err
		}
		cfg.Provider = p
	}
	if f.Model != nil {
		cfg.Params.Model = strings.TrimSpace(*f.Model)
	}
	if f.Temperature != nil {
		cfg.Params.Temperature = f.Temperature
	}
	if f.MaxTokens != nil {
		cfg.Params.MaxTokens = *f.MaxTokens
	}
	if f.TopP != nil {
		cfg.Params.TopP = f.TopP
	}
	if f.LogLevel != nil {
		lvl, err := ParseLevel(*f.LogLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = lvl
	}
	if f.StopOnComplete != nil {
		cfg.StopOnComplete = *f.StopOnComplete
	}
	if f.Collections != nil {
		cfg.Collections = f.Collections
	}
	if err := parseDuration("idle_timeout", f.IdleTimeout, &cfg.Timeouts.Idle); err != nil {
		return err
	}
	if t := f.Timeouts; t != nil {
		for _, d := range []struct {
			name string
			raw  *string
			dst  *time.Duration
		}{
			{"timeouts.generate", t.Generate, &cfg.Timeouts.Generate},
			{"timeouts.summarize", t.Summarize, &cfg.Timeouts.Summarize},
			{"timeouts.query", t.Query, &cfg.Timeouts.Query},
			{"timeouts.video", t.Video, &cfg.Timeouts.Video},
			{"timeouts.media", t.Media, &cfg.Timeouts.Media},
			{"timeouts.metadata", t.Metadata, &cfg.Timeouts.Metadata},
		} {
			if err := parseDuration(d.name, d.raw, d.dst); err != nil {
				return err
			}
		}
	}
	return cfg.Params.Validate()
}

func parseDuration(name string, raw *string, dst *time.Duration) error {
	if raw == nil {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(*raw))
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative", name)
	}
	*dst = d
	return nil
}

// ApplyEnv overrides cfg with PLAYGROUND_* variables. getenv is usually
// os.Getenv; env is only read by the caller.
func ApplyEnv(cfg Config, getenv func(string) string) (Config, error) {
	if v := getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := getenv(EnvProvider); v != "" {
		p, err := ParseProvider(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvProvider, err)
		}
		cfg.Provider = p
	}
	if v := getenv(EnvModel); v != "" {
		cfg.Params.Model = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		lvl, err := ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

// ParseProvider normalizes and checks a provider name.
func ParseProvider(s string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(s))
	switch p {
	case ProviderBackend, ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return p, nil
	}
	return "", fmt.Errorf("unknown provider %q: must be one of %s", s,
		strings.Join([]string{ProviderBackend, ProviderOpenAI, ProviderAnthropic, ProviderGemini}, ", "))
}

// ParseLevel parses a log level name. "off" is accepted as an alias of
// "disabled"; the empty string is rejected.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return zerolog.NoLevel, errors.New("empty log level")
	case "off":
		return zerolog.Disabled, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level: %w", err)
	}
	return lvl, nil
}
