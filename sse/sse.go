// Package sse decodes server-sent-event style response bodies into typed
// chunks.
//
// A decode pulls raw byte chunks from a [playground.ByteSource], decodes them
// to text statefully (a character split across two reads is completed on the
// next read), reassembles complete lines in a carry-over buffer, groups them
// into frames and dispatches each frame synchronously, in arrival order, until
// the source ends, the terminal signal arrives, the context is cancelled or the
// transport fails:
//
//	event: <type>      (optional)
//	data: <payload>
//	                   (blank separator, optional)
//
// The literal payload [DONE] ends the stream even if the connection stays
// open. Frames whose payload cannot be parsed are logged and skipped; they
// never abort a stream.
package sse

import (
	"errors"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// TerminalSignal is the data payload that marks explicit end of stream.
const TerminalSignal = "[DONE]"

// EventError is the event type backends use for in-stream errors.
const EventError = "error"

const (
	eventPrefix = "event:"
	dataPrefix  = "data:"

	defaultMaxLineSize = 1 << 20
	logPayloadLimit    = 120
)

// ErrStop may be returned from a frame handler to end the decode cleanly.
var ErrStop = errors.New("sse: stop")

// Frame is one event-type + data line pair. Event is empty when the data line
// was not preceded by an event line.
type Frame struct {
	Event string
	Data  string
}

type config struct {
	logger           zerolog.Logger
	encoding         encoding.Encoding
	maxLineSize      int
	stopOnComplete   bool
	failOnErrorEvent bool
}

func newConfig(opts []Option) config {
	cfg := config{
		logger:      zerolog.Nop(),
		encoding:    unicode.UTF8,
		maxLineSize: defaultMaxLineSize,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// Option configures a decode.
type Option func(*config)

// WithLogger sets the logger used for skipped frames and stream lifecycle.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithEncoding sets the character encoding of the body. Default is UTF-8,
// with invalid sequences replaced by U+FFFD. A nil encoding is ignored.
func WithEncoding(e encoding.Encoding) Option {
	return func(c *config) {
		if e != nil {
			c.encoding = e
		}
	}
}

// WithMaxLineSize bounds the length of a single line in bytes. A longer line
// aborts the decode with [playground.ErrFrameTooLarge]. Values <= 0 restore
// the default of 1 MiB.
func WithMaxLineSize(n int) Option {
	return func(c *config) {
		if n <= 0 {
			n = defaultMaxLineSize
		}
		c.maxLineSize = n
	}
}

// StopOnComplete makes [Decode] stop cleanly right after dispatching a chunk
// that implements [playground.Completer] and reports completion. Without it a
// decode ends only on end of stream, the terminal signal, an error or
// cancellation.
func StopOnComplete() Option {
	return func(c *config) { c.stopOnComplete = true }
}

// FailOnErrorEvent makes [Decode] treat a data line following "event: error"
// as fatal: it is reported once through onError wrapping
// [playground.ErrUpstream]. By default such frames are logged and skipped.
func FailOnErrorEvent() Option {
	return func(c *config) { c.failOnErrorEvent = true }
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
