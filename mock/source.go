package mock

import (
	"io"

	"github.com/fwojciec/playground"
)

// Interface compliance check.
var _ playground.ByteSource = (*ByteSource)(nil)

// ByteSource is a test double for playground.ByteSource.
// NextFn panics when nil to catch missing setup.
type ByteSource struct {
	NextFn func() ([]byte, error)
}

// Next delegates to NextFn.
func (s *ByteSource) Next() ([]byte, error) {
	return s.NextFn()
}

// Chunks returns a ByteSource that yields each chunk in turn and then io.EOF.
func Chunks(chunks ...string) *ByteSource {
	i := 0
	return &ByteSource{NextFn: func() ([]byte, error) {
		if i >= len(chunks) {
			return nil, io.EOF
		}
		i++
		return []byte(chunks[i-1]), nil
	}}
}
