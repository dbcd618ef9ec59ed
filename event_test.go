package playground_test

import (
	"testing"
	"time"

	"github.com/fwojciec/playground"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestGenerationChunk_Events(t *testing.T) {
	t.Parallel()

	t.Run("content only", func(t *testing.T) {
		t.Parallel()
		c := playground.GenerationChunk{Content: "hi"}
		assert.Equal(t, []playground.Event{playground.EventContent{Delta: "hi"}}, c.Events())
		assert.False(t, c.Complete())
	})

	t.Run("final chunk", func(t *testing.T) {
		t.Parallel()
		c := playground.GenerationChunk{
			IsComplete:  true,
			Usage:       &playground.Usage{TotalTokens: 9},
			ElapsedTime: time.Second,
		}
		assert.Equal(t, []playground.Event{
			playground.EventUsage{Usage: playground.Usage{TotalTokens: 9}},
			playground.EventComplete{Elapsed: time.Second},
		}, c.Events())
		assert.True(t, c.Complete())
	})

	t.Run("empty chunk has no events", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, playground.GenerationChunk{}.Events())
	})
}

func TestSummaryChunk_Events(t *testing.T) {
	t.Parallel()
	c := playground.SummaryChunk{Content: "tl;dr", IsComplete: true, CompressionRatio: 0.2}
	assert.Equal(t, []playground.Event{
		playground.EventContent{Delta: "tl;dr"},
		playground.EventComplete{},
	}, c.Events())
}

func TestAnswerChunk_Events(t *testing.T) {
	t.Parallel()
	src := []playground.Source{{ID: "d1", Title: "Doc"}}
	c := playground.AnswerChunk{
		Content:    "Yes.",
		Sources:    src,
		Confidence: ptr(0.7),
		IsComplete: true,
	}
	assert.Equal(t, []playground.Event{
		playground.EventContent{Delta: "Yes."},
		playground.EventSources{Sources: src},
		playground.EventConfidence{Score: 0.7},
		playground.EventComplete{},
	}, c.Events())
}

func TestVideoChunk_Events(t *testing.T) {
	t.Parallel()

	t.Run("progress", func(t *testing.T) {
		t.Parallel()
		c := playground.VideoChunk{Content: "frame 10", Status: "rendering", Progress: 40}
		assert.Equal(t, []playground.Event{
			playground.EventContent{Delta: "frame 10"},
			playground.EventProgress{Status: "rendering", Percent: 40},
		}, c.Events())
	})

	t.Run("artifact", func(t *testing.T) {
		t.Parallel()
		c := playground.VideoChunk{Status: "done", Progress: 100, VideoURL: "https://cdn/v.mp4", IsComplete: true}
		assert.Equal(t, []playground.Event{
			playground.EventProgress{Status: "done", Percent: 100},
			playground.EventArtifact{URL: "https://cdn/v.mp4"},
			playground.EventComplete{},
		}, c.Events())
	})
}

func TestEventTypeSwitch_Exhaustive(t *testing.T) {
	t.Parallel()
	events := []playground.Event{
		playground.EventContent{},
		playground.EventUsage{},
		playground.EventSources{},
		playground.EventConfidence{},
		playground.EventProgress{},
		playground.EventArtifact{},
		playground.EventComplete{},
	}
	assert.Len(t, events, 7, "update slice and switch when adding new Event types")
	for _, e := range events {
		switch e.(type) {
		case playground.EventContent:
		case playground.EventUsage:
		case playground.EventSources:
		case playground.EventConfidence:
		case playground.EventProgress:
		case playground.EventArtifact:
		case playground.EventComplete:
		default:
			t.Fatalf("unexpected event type: %T", e)
		}
	}
}
