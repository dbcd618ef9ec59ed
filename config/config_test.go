package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/playground/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.toml", `
base_url = "http://backend:9000/"
provider = "OpenAI"
model = "gpt-4o-mini"
temperature = 0.2
max_tokens = 512
log_level = "debug"
idle_timeout = "30s"
stop_on_complete = true
collections = ["docs", "faq"]

[timeouts]
generate = "90s"
metadata = "2s"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000/", cfg.BaseURL)
	assert.Equal(t, config.ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Params.Model)
	require.NotNil(t, cfg.Params.Temperature)
	assert.InDelta(t, 0.2, *cfg.Params.Temperature, 1e-9)
	assert.Equal(t, 512, cfg.Params.MaxTokens)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Idle)
	assert.Equal(t, 90*time.Second, cfg.Timeouts.Generate)
	assert.Equal(t, 2*time.Second, cfg.Timeouts.Metadata)
	assert.Equal(t, 5*time.Minute, cfg.Timeouts.Query, "unset timeouts keep defaults")
	assert.True(t, cfg.StopOnComplete)
	assert.Equal(t, []string{"docs", "faq"}, cfg.Collections)
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.yaml", `
provider: anthropic
top_p: 0.9
timeouts:
  video: 10m
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.ProviderAnthropic, cfg.Provider)
	require.NotNil(t, cfg.Params.TopP)
	assert.InDelta(t, 0.9, *cfg.Params.TopP, 1e-9)
	assert.Equal(t, 10*time.Minute, cfg.Timeouts.Video)
	assert.Equal(t, config.Default().BaseURL, cfg.BaseURL)
}

func TestLoad_EmptyYAMLUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeFile(t, "config.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unknown toml key", "c.toml", `colour = "red"`, `unknown key "colour"`},
		{"unknown yaml key", "c.yaml", "colour: red\n", "colour"},
		{"bad duration", "c.toml", "[timeouts]\nquery = \"soon\"\n", "timeouts.query"},
		{"negative duration", "c.toml", `idle_timeout = "-1s"`, "must not be negative"},
		{"bad provider", "c.toml", `provider = "llama"`, "unknown provider"},
		{"bad log level", "c.yaml", "log_level: loud\n", "log level"},
		{"invalid params", "c.toml", "temperature = 3.0", "temperature"},
		{"unsupported extension", "c.json", "{}", "unsupported file type"},
		{"malformed toml", "c.toml", "base_url = ", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	t.Run("overrides set variables", func(t *testing.T) {
		t.Parallel()
		env := map[string]string{
			config.EnvBaseURL:  "http://env:1",
			config.EnvProvider: "gemini",
			config.EnvModel:    "gemini-2.5-pro",
			config.EnvLogLevel: "warn",
		}
		cfg, err := config.ApplyEnv(config.Default(), func(k string) string { return env[k] })
		require.NoError(t, err)
		assert.Equal(t, "http://env:1", cfg.BaseURL)
		assert.Equal(t, config.ProviderGemini, cfg.Provider)
		assert.Equal(t, "gemini-2.5-pro", cfg.Params.Model)
		assert.Equal(t, zerolog.WarnLevel, cfg.LogLevel)
	})

	t.Run("empty environment changes nothing", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.ApplyEnv(config.Default(), func(string) string { return "" })
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("rejects bad provider", func(t *testing.T) {
		t.Parallel()
		_, err := config.ApplyEnv(config.Default(), func(k string) string {
			if k == config.EnvProvider {
				return "nope"
			}
			return ""
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.EnvProvider)
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"off", zerolog.Disabled},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := config.ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := config.ParseLevel("")
	assert.Error(t, err)
	_, err = config.ParseLevel("chatty")
	assert.Error(t, err)
}
