package gemini

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/fwojciec/playground"
	"github.com/fwojciec/playground/sse"
	"google.golang.org/genai"
)

// StreamFromIter drains seq, calling onChunk for every response that carries
// text, usage or a finish reason. The first iterator error or a blocked prompt
// ends the stream with a single onError call, classified like a decoder
// failure: cancellation, timeout or transport.
func StreamFromIter(
	ctx context.Context,
	seq iter.Seq2[*genai.GenerateContentResponse, error],
	onChunk func(playground.GenerationChunk),
	onError func(error),
) {
	fail := func(err error) {
		if onError != nil {
			onError(err)
		}
	}
	if ctx.Err() != nil {
		fail(fmt.Errorf("gemini: %w", sse.Classify(ctx, ctx.Err())))
		return
	}
	start := time.Now()
	for resp, err := range seq {
		if err != nil {
			fail(fmt.Errorf("gemini: %w", sse.Classify(ctx, err)))
			return
		}
		if resp == nil {
			continue
		}
		if err := blocked(resp); err != nil {
			fail(err)
			return
		}
		chunk, ok := convertResponse(resp, time.Since(start))
		if ok && onChunk != nil {
			onChunk(chunk)
		}
		if ctx.Err() != nil {
			fail(fmt.Errorf("gemini: %w", sse.Classify(ctx, ctx.Err())))
			return
		}
	}
}

// blocked reports a prompt rejected for safety. Such responses carry
// PromptFeedback and no candidates.
func blocked(resp *genai.GenerateContentResponse) error {
	pf := resp.PromptFeedback
	if pf == nil || pf.BlockReason == "" || len(resp.Candidates) > 0 {
		return nil
	}
	msg := string(pf.BlockReason)
	if pf.BlockReasonMessage != "" {
		msg += ": " + pf.BlockReasonMessage
	}
	return fmt.Errorf("gemini: %w: prompt blocked: %s", playground.ErrUpstream, msg)
}

// convertResponse maps one response. Thought parts are not content. It
// reports false when there is nothing for the caller.
func convertResponse(resp *genai.GenerateContentResponse, elapsed time.Duration) (playground.GenerationChunk, bool) {
	chunk := playground.GenerationChunk{Model: resp.ModelVersion}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		cand := resp.Candidates[0]
		if cand.Content != nil {
			var b strings.Builder
			for _, p := range cand.Content.Parts {
				if p == nil || p.Thought {
					continue
				}
				b.WriteString(p.Text)
			}
			chunk.Content = b.String()
		}
		if cand.FinishReason != "" && cand.FinishReason != genai.FinishReasonUnspecified {
			chunk.IsComplete = true
			chunk.ElapsedTime = elapsed
		}
	}
	if um := resp.UsageMetadata; um != nil {
		chunk.Usage = &playground.Usage{
			PromptTokens:     max(int(um.PromptTokenCount), 0),
			CompletionTokens: max(int(um.CandidatesTokenCount), 0),
			TotalTokens:      max(int(um.TotalTokenCount), 0),
		}
	}
	ok := chunk.Content != "" || chunk.IsComplete || chunk.Usage != nil
	return chunk, ok
}
