// Package mock provides test doubles for playground interfaces using function fields.
package mock

import (
	"context"
	"fmt"

	"github.com/fwojciec/playground"
)

// Interface compliance checks.
var (
	_ playground.Generator      = (*Generator)(nil)
	_ playground.Summarizer     = (*Summarizer)(nil)
	_ playground.Answerer       = (*Answerer)(nil)
	_ playground.VideoGenerator = (*VideoGenerator)(nil)
)

// Generator is a test double for playground.Generator.
// Set GenerateFn before calling Generate.
type Generator struct {
	GenerateFn func(ctx context.Context, req playground.GenerateRequest, onChunk func(playground.GenerationChunk), onError func(error))
}

// Generate delegates to GenerateFn.
func (g *Generator) Generate(ctx context.Context, req playground.GenerateRequest, onChunk func(playground.GenerationChunk), onError func(error)) {
	g.GenerateFn(ctx, req, onChunk, onError)
}

// Summarizer is a test double for playground.Summarizer.
type Summarizer struct {
	SummarizeFn func(ctx context.Context, req playground.SummarizeRequest, onChunk func(playground.SummaryChunk), onError func(error))
}

// Summarize delegates to SummarizeFn.
func (s *Summarizer) Summarize(ctx context.Context, req playground.SummarizeRequest, onChunk func(playground.SummaryChunk), onError func(error)) {
	s.SummarizeFn(ctx, req, onChunk, onError)
}

// Answerer is a test double for playground.Answerer.
type Answerer struct {
	QueryFn func(ctx context.Context, req playground.QueryRequest, onChunk func(playground.AnswerChunk), onError func(error))
}

// Query delegates to QueryFn.
func (a *Answerer) Query(ctx context.Context, req playground.QueryRequest, onChunk func(playground.AnswerChunk), onError func(error)) {
	a.QueryFn(ctx, req, onChunk, onError)
}

// VideoGenerator is a test double for playground.VideoGenerator.
type VideoGenerator struct {
	GenerateVideoFn func(ctx context.Context, req playground.VideoRequest, onChunk func(playground.VideoChunk), onError func(error))
}

// GenerateVideo delegates to GenerateVideoFn.
func (v *VideoGenerator) GenerateVideo(ctx context.Context, req playground.VideoRequest, onChunk func(playground.VideoChunk), onError func(error)) {
	v.GenerateVideoFn(ctx, req, onChunk, onError)
}

// Replay returns a streaming function that emits chunks in order and then,
// when err is non-nil, reports it. When ctx is done before all chunks are
// emitted it reports playground.ErrCanceled instead. The request type must be
// given explicitly:
//
//	gen := &mock.Generator{GenerateFn: mock.Replay[playground.GenerateRequest](chunks, nil)}
func Replay[R, C any](chunks []C, err error) func(ctx context.Context, req R, onChunk func(C), onError func(error)) {
	return func(ctx context.Context, _ R, onChunk func(C), onError func(error)) {
		for _, c := range chunks {
			if ctx.Err() != nil {
				onError(fmt.Errorf("%w: %w", playground.ErrCanceled, ctx.Err()))
				return
			}
			onChunk(c)
		}
		if err != nil {
			onError(err)
		}
	}
}
