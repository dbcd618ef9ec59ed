package playground

import "time"

// Completer is implemented by chunk values that carry a completion flag.
type Completer interface {
	Complete() bool
}

// Chunk is the caller-visible unit of streamed content. Every endpoint has its
// own chunk shape; all of them can be flattened into events.
type Chunk interface {
	Completer
	Events() []Event
}

// Source is a supporting reference returned alongside a retrieval answer.
type Source struct {
	ID      string
	Title   string
	URI     string
	Snippet string
	Score   float64
}

// GenerationChunk is one increment of a text generation stream.
type GenerationChunk struct {
	Content     string
	IsComplete  bool
	Usage       *Usage
	ElapsedTime time.Duration
	Model       string
}

// Complete reports whether the backend flagged the response as complete.
func (c GenerationChunk) Complete() bool { return c.IsComplete }

// Events flattens the chunk.
func (c GenerationChunk) Events() []Event {
	var evts []Event
	if c.Content != "" {
		evts = append(evts, EventContent{Delta: c.Content})
	}
	if c.Usage != nil {
		evts = append(evts, EventUsage{Usage: *c.Usage})
	}
	if c.IsComplete {
		evts = append(evts, EventComplete{Elapsed: c.ElapsedTime})
	}
	return evts
}

// SummaryChunk is one increment of a summarization stream.
type SummaryChunk struct {
	Content          string
	IsComplete       bool
	Usage            *Usage
	ElapsedTime      time.Duration
	CompressionRatio float64
}

// Complete reports whether the backend flagged the summary as complete.
func (c SummaryChunk) Complete() bool { return c.IsComplete }

// Events flattens the chunk.
func (c SummaryChunk) Events() []Event {
	var evts []Event
	if c.Content != "" {
		evts = append(evts, EventContent{Delta: c.Content})
	}
	if c.Usage != nil {
		evts = append(evts, EventUsage{Usage: *c.Usage})
	}
	if c.IsComplete {
		evts = append(evts, EventComplete{Elapsed: c.ElapsedTime})
	}
	return evts
}

// AnswerChunk is one increment of a retrieval-augmented answer. Sources and
// Confidence usually arrive once, on the first or the final chunk.
type AnswerChunk struct {
	Content     string
	IsComplete  bool
	Sources     []Source
	Confidence  *float64
	Usage       *Usage
	ElapsedTime time.Duration
}

// Complete reports whether the backend flagged the answer as complete.
func (c AnswerChunk) Complete() bool { return c.IsComplete }

// Events flattens the chunk.
func (c AnswerChunk) Events() []Event {
	var evts []Event
	if c.Content != "" {
		evts = append(evts, EventContent{Delta: c.Content})
	}
	if len(c.Sources) > 0 {
		evts = append(evts, EventSources{Sources: c.Sources})
	}
	if c.Confidence != nil {
		evts = append(evts, EventConfidence{Score: *c.Confidence})
	}
	if c.Usage != nil {
		evts = append(evts, EventUsage{Usage: *c.Usage})
	}
	if c.IsComplete {
		evts = append(evts, EventComplete{Elapsed: c.ElapsedTime})
	}
	return evts
}

// VideoChunk reports progress of a video generation job. Content carries
// human-readable log lines; VideoURL is set once the video is available.
type VideoChunk struct {
	Content     string
	IsComplete  bool
	Status      string
	Progress    float64
	VideoURL    string
	ElapsedTime time.Duration
}

// Complete reports whether the job finished.
func (c VideoChunk) Complete() bool { return c.IsComplete }

// Events flattens the chunk.
func (c VideoChunk) Events() []Event {
	var evts []Event
	if c.Content != "" {
		evts = append(evts, EventContent{Delta: c.Content})
	}
	if c.Status != "" || c.Progress > 0 {
		evts = append(evts, EventProgress{Status: c.Status, Percent: c.Progress})
	}
	if c.VideoURL != "" {
		evts = append(evts, EventArtifact{URL: c.VideoURL})
	}
	if c.IsComplete {
		evts = append(evts, EventComplete{Elapsed: c.ElapsedTime})
	}
	return evts
}

// Interface compliance checks.
var (
	_ Chunk = GenerationChunk{}
	_ Chunk = SummaryChunk{}
	_ Chunk = AnswerChunk{}
	_ Chunk = VideoChunk{}
)
