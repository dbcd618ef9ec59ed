package playground

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrTransport indicates the connection failed, the backend answered
	// with a non-success status, or reading the response body failed.
	ErrTransport = errors.New("transport error")

	// ErrTimeout indicates a stream was aborted because a deadline passed or
	// no data arrived within the inactivity window.
	ErrTimeout = errors.New("stream timed out")

	// ErrCanceled indicates the caller cancelled the stream.
	ErrCanceled = errors.New("stream canceled")

	// ErrUpstream indicates the backend reported an error inside the stream.
	ErrUpstream = errors.New("upstream error")

	// ErrFrameTooLarge indicates a single line exceeded the decoder's limit.
	ErrFrameTooLarge = errors.New("frame too large")
)
