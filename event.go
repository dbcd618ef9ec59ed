package playground

import "time"

// Event is a sealed interface representing one semantic piece of a streamed
// response. Chunks of every endpoint decompose into events so that
// presentation and recording code handle all endpoints the same way.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventContent carries incremental text.
type EventContent struct {
	Delta string
}

func (EventContent) event() {}

// EventUsage carries token counters. Later values supersede earlier ones.
type EventUsage struct {
	Usage Usage
}

func (EventUsage) event() {}

// EventSources carries supporting references for a retrieval answer.
type EventSources struct {
	Sources []Source
}

func (EventSources) event() {}

// EventConfidence carries the backend's confidence score for an answer.
type EventConfidence struct {
	Score float64
}

func (EventConfidence) event() {}

// EventProgress reports progress of a long-running generation job.
type EventProgress struct {
	Status  string
	Percent float64
}

func (EventProgress) event() {}

// EventArtifact points at a produced artifact such as a rendered video.
type EventArtifact struct {
	URL string
}

func (EventArtifact) event() {}

// EventComplete signals that the backend flagged the response as complete.
// Elapsed is the server-reported generation time, zero when not reported.
type EventComplete struct {
	Elapsed time.Duration
}

func (EventComplete) event() {}

// Interface compliance checks.
var (
	_ Event = EventContent{}
	_ Event = EventUsage{}
	_ Event = EventSources{}
	_ Event = EventConfidence{}
	_ Event = EventProgress{}
	_ Event = EventArtifact{}
	_ Event = EventComplete{}
)
