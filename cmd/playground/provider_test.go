package main

import (
	"context"
	"testing"

	"github.com/fwojciec/playground/backend"
	"github.com/fwojciec/playground/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveGenerator_Backend(t *testing.T) {
	t.Parallel()
	b := backend.New("http://localhost:8000")
	g, err := resolveGenerator(context.Background(), config.ProviderBackend, apiKeys{}, generatorOptions{backend: b})
	require.NoError(t, err)
	assert.Same(t, b, g)
}

func TestResolveGenerator_ExplicitOpenAI(t *testing.T) {
	t.Parallel()
	g, err := resolveGenerator(context.Background(), config.ProviderOpenAI, apiKeys{OpenAI: "sk-test"}, generatorOptions{model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestResolveGenerator_ExplicitAnthropic(t *testing.T) {
	t.Parallel()
	g, err := resolveGenerator(context.Background(), config.ProviderAnthropic, apiKeys{Anthropic: "sk-ant"}, generatorOptions{})
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestResolveGenerator_ExplicitGemini(t *testing.T) {
	t.Parallel()
	g, err := resolveGenerator(context.Background(), config.ProviderGemini, apiKeys{Gemini: "gk-test"}, generatorOptions{})
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestResolveGenerator_MissingKey(t *testing.T) {
	t.Parallel()
	for provider, want := range map[string]string{
		config.ProviderOpenAI:    "OPENAI_API_KEY not set",
		config.ProviderAnthropic: "ANTHROPIC_API_KEY not set",
		config.ProviderGemini:    "GEMINI_API_KEY not set",
	} {
		_, err := resolveGenerator(context.Background(), provider, apiKeys{}, generatorOptions{})
		require.Error(t, err, provider)
		assert.Contains(t, err.Error(), want)
	}
}

func TestResolveGenerator_UnknownProvider(t *testing.T) {
	t.Parallel()
	_, err := resolveGenerator(context.Background(), "mistral", apiKeys{}, generatorOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}
