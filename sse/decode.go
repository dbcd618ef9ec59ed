package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/playground"
)

// Decode reads src until it ends and dispatches every data frame, parsed as
// JSON into T, to onChunk. Calls to onChunk are synchronous and follow the
// order of the frames in the stream; the next chunk of bytes is only requested
// once every frame completed by the previous one was dispatched.
//
// onError is called at most once, only for conditions that end the whole
// decode: transport failures ([playground.ErrTransport]), cancellation
// ([playground.ErrCanceled]), timeouts ([playground.ErrTimeout]) and oversized
// lines ([playground.ErrFrameTooLarge]). No callback follows it. End of
// stream and the terminal signal end the decode without calling onError, even
// when a partial line is left unterminated. A payload that is not valid JSON
// for T is logged and skipped.
//
// Frames typed "error" are skipped unless [FailOnErrorEvent] is set.
func Decode[T any](ctx context.Context, src playground.ByteSource, onChunk func(T), onError func(error), opts ...Option) {
	cfg := newConfig(opts)
	log := cfg.logger
	onFrame := func(f Frame) error {
		if f.Event == EventError {
			if cfg.failOnErrorEvent {
				return fmt.Errorf("sse: %w: %s", playground.ErrUpstream, ErrorMessage(f.Data))
			}
			log.Warn().Str("payload", truncate(f.Data, logPayloadLimit)).Msg("sse: skipping error event")
			return nil
		}
		if strings.TrimSpace(f.Data) == "null" {
			log.Warn().Str("event", f.Event).Msg("sse: skipping null frame")
			return nil
		}
		var v T
		if err := json.Unmarshal([]byte(f.Data), &v); err != nil {
			log.Warn().Err(err).Str("event", f.Event).Str("payload", truncate(f.Data, logPayloadLimit)).Msg("sse: skipping malformed frame")
			return nil
		}
		if onChunk != nil {
			onChunk(v)
		}
		if cfg.stopOnComplete {
			if c, ok := any(v).(playground.Completer); ok && c.Complete() {
				return ErrStop
			}
		}
		return nil
	}
	run(ctx, src, cfg, onFrame, onError)
}

// DecodeFrames is the untyped form of [Decode]: every data frame, including
// frames typed "error", is passed to onFrame as is. If onFrame returns
// [ErrStop] the decode ends cleanly; any other error ends it and is passed to
// onError. The terminal signal is handled here and never reaches onFrame.
func DecodeFrames(ctx context.Context, src playground.ByteSource, onFrame func(Frame) error, onError func(error), opts ...Option) {
	run(ctx, src, newConfig(opts), onFrame, onError)
}

func run(ctx context.Context, src playground.ByteSource, cfg config, onFrame func(Frame) error, onError func(error)) {
	d := &decoder{
		ctx:   ctx,
		src:   src,
		lines: newLineBuffer(cfg.encoding, cfg.maxLineSize),
		cfg:   cfg,
	}
	err := d.loop(onFrame)
	log := cfg.logger
	if err != nil {
		log.Debug().Err(err).Int("frames", d.frames).Msg("sse: stream aborted")
		if onError != nil {
			onError(err)
		}
		return
	}
	log.Debug().Int("frames", d.frames).Str("reason", d.reason).Msg("sse: stream ended")
}

// decoder holds the state of exactly one decode.
type decoder struct {
	ctx    context.Context
	src    playground.ByteSource
	lines  *lineBuffer
	cfg    config
	event  string // type of the frame being assembled
	frames int
	reason string
}

// loop returns nil when the stream ended cleanly.
func (d *decoder) loop(onFrame func(Frame) error) error {
	for {
		if d.ctx.Err() != nil {
			return fmt.Errorf("sse: %w", abortError(d.ctx))
		}
		chunk, err := d.src.Next()
		if err == io.EOF {
			if n := d.lines.partial(); n > 0 {
				d.cfg.logger.Debug().Int("bytes", n).Msg("sse: discarding unterminated line")
			}
			d.reason = "eof"
			return nil
		}
		if err != nil {
			return fmt.Errorf("sse: %w", Classify(d.ctx, err))
		}
		lines, err := d.lines.feed(chunk)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if d.ctx.Err() != nil {
				return fmt.Errorf("sse: %w", abortError(d.ctx))
			}
			done, err := d.line(line, onFrame)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

// line classifies one complete line. It reports true when the decode must end
// cleanly.
func (d *decoder) line(line string, onFrame func(Frame) error) (bool, error) {
	switch {
	case line == "":
		d.event = ""
	case strings.HasPrefix(line, eventPrefix):
		d.event = strings.TrimSpace(line[len(eventPrefix):])
	case strings.HasPrefix(line, dataPrefix):
		data := strings.TrimSpace(line[len(dataPrefix):])
		event := d.event
		d.event = ""
		if data == TerminalSignal {
			d.reason = "done"
			return true, nil
		}
		d.frames++
		if err := onFrame(Frame{Event: event, Data: data}); err != nil {
			if errors.Is(err, ErrStop) {
				d.reason = "stopped"
				return true, nil
			}
			return false, err
		}
	}
	// Comments, id:, retry: and unknown fields are ignored.
	return false, nil
}

// Classify maps an error that ended a request or a read to
// [playground.ErrCanceled], [playground.ErrTimeout] or
// [playground.ErrTransport]. When ctx is done its cause decides, so a
// watchdog or deadline expiry is reported as a timeout and a caller
// cancellation as a cancellation, whatever error the transport returned.
func Classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return abortError(ctx)
	}
	var timeout interface{ Timeout() bool }
	switch {
	case errors.Is(err, playground.ErrTimeout), errors.Is(err, playground.ErrCanceled):
		return err
	case errors.Is(err, context.Canceled):
		return playground.ErrCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: deadline exceeded", playground.ErrTimeout)
	case errors.As(err, &timeout) && timeout.Timeout():
		return fmt.Errorf("%w: %w", playground.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", playground.ErrTransport, err)
}

// abortError describes why ctx ended, distinguishing timeouts from
// cancellation by the caller.
func abortError(ctx context.Context) error {
	cause := context.Cause(ctx)
	switch {
	case errors.Is(cause, playground.ErrTimeout), errors.Is(cause, playground.ErrCanceled):
		return cause
	case errors.Is(cause, context.DeadlineExceeded):
		return fmt.Errorf("%w: deadline exceeded", playground.ErrTimeout)
	case cause == nil, errors.Is(cause, context.Canceled):
		return playground.ErrCanceled
	default:
		return fmt.Errorf("%w: %w", playground.ErrCanceled, cause)
	}
}

// ErrorMessage extracts a human-readable message from an error payload such
// as {"error":{"message":"..."}}, {"error":"..."}, {"detail":"..."} or
// {"message":"..."}. Payloads that match none of these are returned trimmed.
func ErrorMessage(payload string) string {
	var body struct {
		Error   json.RawMessage `json:"error"`
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal([]byte(payload), &body); err == nil {
		for _, raw := range []json.RawMessage{body.Error, body.Detail} {
			if msg := rawMessage(raw); msg != "" {
				return msg
			}
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(payload)
}

func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		switch {
		case obj.Type != "" && obj.Message != "":
			return obj.Type + ": " + obj.Message
		case obj.Message != "":
			return obj.Message
		}
	}
	return ""
}
