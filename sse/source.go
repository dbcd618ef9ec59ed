package sse

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/playground"
)

const (
	defaultReadSize          = 4096
	maxConsecutiveEmptyReads = 100
)

// Interface compliance check.
var _ playground.ByteSource = (*ReaderSource)(nil)

// ReaderSource adapts an [io.Reader], typically an HTTP response body, to
// [playground.ByteSource]. Each Next returns a fresh slice holding whatever a
// single Read produced.
type ReaderSource struct {
	r   io.Reader
	buf []byte
	err error // deferred error from a Read that also returned data
}

// NewReaderSource returns a source reading at most size bytes per chunk.
// A size <= 0 selects 4 KiB.
func NewReaderSource(r io.Reader, size int) *ReaderSource {
	if size <= 0 {
		size = defaultReadSize
	}
	return &ReaderSource{r: r, buf: make([]byte, size)}
}

// Next returns the next chunk, or io.EOF once the reader is exhausted.
func (s *ReaderSource) Next() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	for range maxConsecutiveEmptyReads {
		n, err := s.r.Read(s.buf)
		if n > 0 {
			s.err = err
			chunk := make([]byte, n)
			copy(chunk, s.buf[:n])
			return chunk, nil
		}
		if err != nil {
			s.err = err
			return nil, err
		}
	}
	s.err = io.ErrNoProgress
	return nil, s.err
}

// Watchdog aborts a stream that stops producing data. It owns a context that
// is cancelled with a [playground.ErrTimeout] cause when no chunk arrived for
// the configured duration; the request whose body is decoded must be created
// with that context so that the pending read fails.
type Watchdog struct {
	d      time.Duration
	timer  *time.Timer
	cancel context.CancelCauseFunc
}

// NewWatchdog starts a watchdog. The clock starts immediately, so a backend
// that never sends response headers is caught too. A duration <= 0 disables
// the timer; the returned context is then only cancelled by Stop or parent.
func NewWatchdog(parent context.Context, d time.Duration) (context.Context, *Watchdog) {
	ctx, cancel := context.WithCancelCause(parent)
	w := &Watchdog{d: d, cancel: cancel}
	if d > 0 {
		w.timer = time.AfterFunc(d, func() {
			cancel(fmt.Errorf("%w: no data received for %s", playground.ErrTimeout, d))
		})
	}
	return ctx, w
}

// Wrap returns a source that resets the inactivity timer on every chunk.
func (w *Watchdog) Wrap(src playground.ByteSource) playground.ByteSource {
	return playground.ByteSourceFunc(func() ([]byte, error) {
		chunk, err := src.Next()
		if err == nil && w.timer != nil {
			w.timer.Reset(w.d)
		}
		return chunk, err
	})
}

// Stop releases the timer and the context.
func (w *Watchdog) Stop() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.cancel(nil)
}
