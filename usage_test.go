package playground_test

import (
	"testing"

	"github.com/fwojciec/playground"
	"github.com/stretchr/testify/assert"
)

func TestUsage_Total(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 10, playground.Usage{TotalTokens: 10, PromptTokens: 1}.Total())
	assert.Equal(t, 7, playground.Usage{PromptTokens: 3, CompletionTokens: 4}.Total())
	assert.Equal(t, 0, playground.Usage{}.Total())
}

func TestUsage_IsZero(t *testing.T) {
	t.Parallel()
	assert.True(t, playground.Usage{}.IsZero())
	assert.False(t, playground.Usage{CompletionTokens: 1}.IsZero())
}

func TestStreamState(t *testing.T) {
	t.Parallel()
	tests := []struct {
		state    playground.StreamState
		name     string
		terminal bool
	}{
		{playground.StreamStateNew, "new", false},
		{playground.StreamStateStreaming, "streaming", false},
		{playground.StreamStateComplete, "complete", true},
		{playground.StreamStateError, "error", true},
		{playground.StreamStateCanceled, "canceled", true},
		{playground.StreamState(42), "unknown", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.state.String())
		assert.Equal(t, tt.terminal, tt.state.Terminal(), tt.name)
	}
}
