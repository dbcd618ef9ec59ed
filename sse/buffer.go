package sse

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fwojciec/playground"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

const replacementChar = "\ufffd"

// textDecoder converts raw body bytes to UTF-8 across read boundaries. Bytes
// of an incomplete trailing character are held back until the next call.
type textDecoder struct {
	t       transform.Transformer
	pending []byte
	dst     []byte
}

func newTextDecoder(e encoding.Encoding) *textDecoder {
	return &textDecoder{
		t:   e.NewDecoder(),
		dst: make([]byte, 4096),
	}
}

// decode appends the UTF-8 text decodable from src (plus any held-back bytes)
// to out and returns the extended slice.
func (d *textDecoder) decode(out, src []byte) []byte {
	in := src
	if len(d.pending) > 0 {
		in = append(d.pending, src...)
		d.pending = nil
	}
	for len(in) > 0 {
		nDst, nSrc, err := d.t.Transform(d.dst, in, false)
		out = append(out, d.dst[:nDst]...)
		in = in[nSrc:]
		switch {
		case err == nil:
			// Transform consumed everything it could.
			if len(in) > 0 && nSrc == 0 {
				out = append(out, replacementChar...)
				in = in[1:]
			}
		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 {
				d.dst = make([]byte, 2*len(d.dst))
			}
		case errors.Is(err, transform.ErrShortSrc):
			d.pending = append([]byte(nil), in...)
			return out
		default:
			// Encodings that report invalid input instead of replacing it.
			// The valid prefix was consumed above; the next pass starts at the
			// bad byte.
			if nSrc == 0 {
				out = append(out, replacementChar...)
				in = in[1:]
			}
		}
	}
	return out
}

// lineBuffer is the carry-over buffer between reads. After every call to
// lines it holds at most one partial line: the text after the last newline.
type lineBuffer struct {
	text    *textDecoder
	buf     []byte
	maxLine int
}

func newLineBuffer(e encoding.Encoding, maxLine int) *lineBuffer {
	return &lineBuffer{text: newTextDecoder(e), maxLine: maxLine}
}

// feed appends raw bytes and returns every line completed by them, without
// their terminators. A trailing "\r" is stripped so CRLF bodies work.
func (b *lineBuffer) feed(chunk []byte) ([]string, error) {
	b.buf = b.text.decode(b.buf, chunk)

	var lines []string
	rest := b.buf
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			break
		}
		line := rest[:i]
		if len(line) > b.maxLine {
			return nil, fmt.Errorf("sse: line of %d bytes exceeds limit of %d: %w", len(line), b.maxLine, playground.ErrFrameTooLarge)
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})
		lines = append(lines, string(line))
		rest = rest[i+1:]
	}
	if len(rest) > b.maxLine {
		return nil, fmt.Errorf("sse: unterminated line of %d bytes exceeds limit of %d: %w", len(rest), b.maxLine, playground.ErrFrameTooLarge)
	}
	b.buf = append(b.buf[:0], rest...)
	return lines, nil
}

// partial returns the length of the unterminated remainder.
func (b *lineBuffer) partial() int {
	return len(b.buf)
}
