package backend

import (
	"context"
	"fmt"

	"github.com/fwojciec/playground"
)

// Generate streams a text generation from POST /api/generate/stream.
func (c *Client) Generate(ctx context.Context, req playground.GenerateRequest, onChunk func(playground.GenerationChunk), onError func(error)) {
	if err := req.Validate(); err != nil {
		reject(onError, err)
		return
	}
	body := apiGenerateRequest{
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
		apiParams:    convertParams(req.Params),
	}
	stream[apiGenerationChunk](ctx, c, generatePath, c.timeouts.Generate, body, onChunk, onError)
}

// Summarize streams a summary from POST /api/summarize/stream.
func (c *Client) Summarize(ctx context.Context, req playground.SummarizeRequest, onChunk func(playground.SummaryChunk), onError func(error)) {
	if err := req.Validate(); err != nil {
		reject(onError, err)
		return
	}
	length := req.Length
	if length == "" {
		length = playground.SummaryMedium
	}
	body := apiSummarizeRequest{
		Text:      req.Text,
		Length:    string(length),
		apiParams: convertParams(req.Params),
	}
	stream[apiSummaryChunk](ctx, c, summarizePath, c.timeouts.Summarize, body, onChunk, onError)
}

// Query streams a retrieval-augmented answer from POST /api/query/stream.
func (c *Client) Query(ctx context.Context, req playground.QueryRequest, onChunk func(playground.AnswerChunk), onError func(error)) {
	if err := req.Validate(); err != nil {
		reject(onError, err)
		return
	}
	body := apiQueryRequest{
		Question:    req.Question,
		Collections: req.Collections,
		TopK:        req.TopK,
		apiParams:   convertParams(req.Params),
	}
	stream[apiAnswerChunk](ctx, c, queryPath, c.timeouts.Query, body, onChunk, onError)
}

// GenerateVideo streams job progress from POST /api/video/stream.
func (c *Client) GenerateVideo(ctx context.Context, req playground.VideoRequest, onChunk func(playground.VideoChunk), onError func(error)) {
	if err := req.Validate(); err != nil {
		reject(onError, err)
		return
	}
	body := apiVideoRequest{
		Prompt:     req.Prompt,
		Duration:   req.DurationSeconds,
		Resolution: req.Resolution,
		apiParams:  convertParams(req.Params),
	}
	stream[apiVideoChunk](ctx, c, videoPath, c.timeouts.Video, body, onChunk, onError)
}

func reject(onError func(error), err error) {
	if onError != nil {
		onError(fmt.Errorf("backend: %w", err))
	}
}
