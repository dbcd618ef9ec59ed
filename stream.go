package playground

// StreamState indicates where a single streaming run is in its lifecycle.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before the first chunk.
	StreamStateStreaming                    // At least one chunk received.
	StreamStateComplete                     // Ended cleanly (EOF or terminal signal).
	StreamStateError                        // Ended with a transport, upstream or timeout error.
	StreamStateCanceled                     // Ended by the caller cancelling.
)

// String returns a lowercase name for the state.
func (s StreamState) String() string {
	switch s {
	case StreamStateNew:
		return "new"
	case StreamStateStreaming:
		return "streaming"
	case StreamStateComplete:
		return "complete"
	case StreamStateError:
		return "error"
	case StreamStateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further chunks can arrive.
func (s StreamState) Terminal() bool {
	return s >= StreamStateComplete
}
