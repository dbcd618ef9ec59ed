package anthropic

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/playground"
	"github.com/fwojciec/playground/sse"
	"github.com/rs/zerolog"
)

// stream turns the event frames of one response into generation chunks.
type stream struct {
	onChunk    func(playground.GenerationChunk)
	logger     zerolog.Logger
	start      time.Time
	model      string
	usage      playground.Usage
	stopReason string
	done       bool
}

func newStream(onChunk func(playground.GenerationChunk), logger zerolog.Logger) *stream {
	return &stream{onChunk: onChunk, logger: logger, start: time.Now()}
}

func (s *stream) emit(c playground.GenerationChunk) {
	if s.onChunk != nil {
		s.onChunk(c)
	}
}

// processFrame handles one SSE frame. It returns [sse.ErrStop] after
// message_stop and an [playground.ErrUpstream] error for error events.
func (s *stream) processFrame(f sse.Frame) error {
	switch f.Event {
	case "message_start":
		return s.handleMessageStart(f.Data)
	case "content_block_delta":
		return s.handleContentBlockDelta(f.Data)
	case "message_delta":
		return s.handleMessageDelta(f.Data)
	case "message_stop":
		s.done = true
		usage := s.usage
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
		s.emit(playground.GenerationChunk{
			IsComplete:  true,
			Usage:       &usage,
			ElapsedTime: time.Since(s.start),
			Model:       s.model,
		})
		return sse.ErrStop
	case sse.EventError:
		return s.handleError(f.Data)
	default:
		// ping, content_block_start, content_block_stop and unknown
		// event types carry nothing for the caller.
		return nil
	}
}

func (s *stream) handleMessageStart(data string) error {
	var evt sseMessageStart
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		s.skip("message_start", err)
		return nil
	}
	s.model = evt.Message.Model
	s.usage.PromptTokens = evt.Message.Usage.InputTokens
	s.usage.CompletionTokens = evt.Message.Usage.OutputTokens
	return nil
}

func (s *stream) handleContentBlockDelta(data string) error {
	var evt sseContentBlockDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		s.skip("content_block_delta", err)
		return nil
	}
	// Thinking, signature and tool input deltas are not part of the text.
	if evt.Delta.Type != "text_delta" || evt.Delta.Text == "" {
		return nil
	}
	s.emit(playground.GenerationChunk{Content: evt.Delta.Text, Model: s.model})
	return nil
}

func (s *stream) handleMessageDelta(data string) error {
	var evt sseMessageDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		s.skip("message_delta", err)
		return nil
	}
	s.usage.CompletionTokens = evt.Usage.OutputTokens
	if evt.Usage.InputTokens != nil {
		s.usage.PromptTokens = *evt.Usage.InputTokens
	}
	if evt.Delta.StopReason != nil {
		s.stopReason = *evt.Delta.StopReason
		s.logger.Debug().Str("stop_reason", s.stopReason).Msg("anthropic: message finished")
	}
	return nil
}

func (s *stream) handleError(data string) error {
	var evt sseError
	if err := json.Unmarshal([]byte(data), &evt); err != nil || evt.Error.Message == "" {
		return fmt.Errorf("anthropic: %w: %s", playground.ErrUpstream, sse.ErrorMessage(data))
	}
	return fmt.Errorf("anthropic: %w: %s: %s", playground.ErrUpstream, evt.Error.Type, evt.Error.Message)
}

func (s *stream) skip(event string, err error) {
	s.logger.Warn().Err(err).Str("event", event).Msg("anthropic: skipping malformed event")
}
