package playground

import (
	"errors"
	"strings"
	"time"
)

// Kind names the endpoint a transcript was recorded from.
type Kind string

const (
	KindGenerate  Kind = "generate"
	KindSummarize Kind = "summarize"
	KindQuery     Kind = "query"
	KindVideo     Kind = "video"
)

// Transcript is the accumulated result of one streaming run.
type Transcript struct {
	ID          string
	Kind        Kind
	Input       string
	Params      Params
	Content     string
	Usage       *Usage
	Sources     []Source
	Confidence  *float64
	Status      string
	Progress    float64
	Artifacts   []string
	Elapsed     time.Duration
	Chunks      int
	State       StreamState
	Err         string
	CreatedAt   time.Time
	CompletedAt time.Time
}

// Recorder accumulates chunks of one run into a Transcript. Like the decoder
// feeding it, it is driven from a single goroutine and is not safe for
// concurrent use.
type Recorder struct {
	t       Transcript
	content strings.Builder
	onEvent func(Event)
	now     func() time.Time
}

// RecorderOption configures a [Recorder].
type RecorderOption func(*Recorder)

// WithEventHandler sets a callback that receives each event after it has been
// recorded.
func WithEventHandler(h func(Event)) RecorderOption {
	return func(r *Recorder) { r.onEvent = h }
}

// WithClock overrides time.Now. Useful for tests.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder starts recording a run described by t.
func NewRecorder(t Transcript, opts ...RecorderOption) *Recorder {
	r := &Recorder{t: t, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	if r.t.CreatedAt.IsZero() {
		r.t.CreatedAt = r.now()
	}
	r.content.WriteString(t.Content)
	return r
}

// Chunk records every event of c.
func (r *Recorder) Chunk(c Chunk) {
	if r.t.State.Terminal() {
		return
	}
	r.t.Chunks++
	r.t.State = StreamStateStreaming
	for _, evt := range c.Events() {
		r.apply(evt)
		if r.onEvent != nil {
			r.onEvent(evt)
		}
	}
}

func (r *Recorder) apply(evt Event) {
	switch e := evt.(type) {
	case EventContent:
		r.content.WriteString(e.Delta)
	case EventUsage:
		u := e.Usage
		r.t.Usage = &u
	case EventSources:
		r.t.Sources = append(r.t.Sources, e.Sources...)
	case EventConfidence:
		score := e.Score
		r.t.Confidence = &score
	case EventProgress:
		if e.Status != "" {
			r.t.Status = e.Status
		}
		if e.Percent > r.t.Progress {
			r.t.Progress = e.Percent
		}
	case EventArtifact:
		r.t.Artifacts = append(r.t.Artifacts, e.URL)
	case EventComplete:
		if e.Elapsed > 0 {
			r.t.Elapsed = e.Elapsed
		}
	}
}

// Fail records the terminal error of the run. Cancellation by the caller is
// recorded as StreamStateCanceled, everything else, timeouts included, as
// StreamStateError.
func (r *Recorder) Fail(err error) {
	if r.t.State.Terminal() || err == nil {
		return
	}
	if errors.Is(err, ErrCanceled) && !errors.Is(err, ErrTimeout) {
		r.t.State = StreamStateCanceled
	} else {
		r.t.State = StreamStateError
	}
	r.t.Err = err.Error()
	r.t.CompletedAt = r.now()
}

// Finish marks the run complete unless it already failed and returns the
// transcript.
func (r *Recorder) Finish() Transcript {
	if !r.t.State.Terminal() {
		r.t.State = StreamStateComplete
		r.t.CompletedAt = r.now()
	}
	return r.Transcript()
}

// Transcript returns a snapshot of what has been recorded so far.
func (r *Recorder) Transcript() Transcript {
	t := r.t
	t.Content = r.content.String()
	return t
}

// Record returns an onChunk callback feeding r. It lets one Recorder serve
// every endpoint's chunk type.
func Record[T Chunk](r *Recorder) func(T) {
	return func(c T) { r.Chunk(c) }
}
