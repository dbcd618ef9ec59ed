package mock_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fwojciec/playground"
	"github.com/fwojciec/playground/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("delegates to GenerateFn", func(t *testing.T) {
		t.Parallel()
		var got playground.GenerateRequest
		g := mock.Generator{
			GenerateFn: func(_ context.Context, req playground.GenerateRequest, onChunk func(playground.GenerationChunk), _ func(error)) {
				got = req
				onChunk(playground.GenerationChunk{Content: "hi"})
			},
		}
		var chunks []playground.GenerationChunk
		g.Generate(context.Background(), playground.GenerateRequest{Prompt: "p"},
			func(c playground.GenerationChunk) { chunks = append(chunks, c) },
			func(error) { t.Fatal("unexpected error") })
		assert.Equal(t, "p", got.Prompt)
		assert.Equal(t, []playground.GenerationChunk{{Content: "hi"}}, chunks)
	})

	t.Run("panics when GenerateFn not set", func(t *testing.T) {
		t.Parallel()
		g := mock.Generator{}
		assert.Panics(t, func() {
			g.Generate(context.Background(), playground.GenerateRequest{}, nil, nil)
		})
	})
}

func TestReplay(t *testing.T) {
	t.Parallel()

	chunks := []playground.AnswerChunk{{Content: "a"}, {Content: "b", IsComplete: true}}

	t.Run("emits chunks in order", func(t *testing.T) {
		t.Parallel()
		a := mock.Answerer{QueryFn: mock.Replay[playground.QueryRequest](chunks, nil)}
		var got []string
		a.Query(context.Background(), playground.QueryRequest{},
			func(c playground.AnswerChunk) { got = append(got, c.Content) },
			func(error) { t.Fatal("unexpected error") })
		assert.Equal(t, []string{"a", "b"}, got)
	})

	t.Run("reports error after chunks", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("boom")
		a := mock.Answerer{QueryFn: mock.Replay[playground.QueryRequest](chunks, wantErr)}
		var n int
		var gotErr error
		a.Query(context.Background(), playground.QueryRequest{},
			func(playground.AnswerChunk) { n++ },
			func(err error) { gotErr = err })
		assert.Equal(t, 2, n)
		assert.ErrorIs(t, gotErr, wantErr)
	})

	t.Run("stops when context is done", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		a := mock.Answerer{QueryFn: mock.Replay[playground.QueryRequest](chunks, nil)}
		var gotErr error
		a.Query(ctx, playground.QueryRequest{},
			func(playground.AnswerChunk) { t.Fatal("unexpected chunk") },
			func(err error) { gotErr = err })
		assert.ErrorIs(t, gotErr, playground.ErrCanceled)
		assert.ErrorIs(t, gotErr, context.Canceled)
	})
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	c := mock.Catalog{
		ModelsFn: func(context.Context) ([]playground.Model, error) {
			return []playground.Model{{ID: "m1"}}, nil
		},
		CollectionsFn: func(context.Context) ([]playground.Collection, error) {
			return nil, playground.ErrTransport
		},
	}
	models, err := c.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "m1", models[0].ID)
	_, err = c.Collections(context.Background())
	assert.ErrorIs(t, err, playground.ErrTransport)
}

func TestMediaGenerator(t *testing.T) {
	t.Parallel()

	m := mock.MediaGenerator{
		GenerateAudioFn: func(_ context.Context, req playground.AudioRequest) (playground.Audio, error) {
			return playground.Audio{MimeType: "audio/" + req.Format}, nil
		},
	}
	audio, err := m.GenerateAudio(context.Background(), playground.AudioRequest{Format: "mp3"})
	require.NoError(t, err)
	assert.Equal(t, "audio/mp3", audio.MimeType)
	assert.Panics(t, func() {
		_, _ = m.GenerateImage(context.Background(), playground.ImageRequest{})
	})
}

func TestChunks(t *testing.T) {
	t.Parallel()

	src := mock.Chunks("a", "bc")
	b, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", string(b))
	b, err = src.Next()
	require.NoError(t, err)
	assert.Equal(t, "bc", string(b))
	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}
