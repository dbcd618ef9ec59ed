// Package ansi makes backend text safe to print on a terminal.
//
// Streamed content comes from a model and is untrusted: escape sequences in
// it could move the cursor, retitle the window or recolor the rest of the
// session. Everything is rendered through Sanitize first.
package ansi

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize strips escape sequences and control characters from s. Tabs and
// newlines survive, CRLF becomes LF, and a lone CR rewinds to the start of
// the line the way a terminal would, so "50%\rdone" prints "done".
func Sanitize(s string) string {
	if isPlain(s) {
		return s
	}
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' || (r > 0x1F && r != 0x7F && (r < 0x80 || r > 0x9F)) {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if !strings.ContainsRune(s, '\r') {
		return s
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.ContainsRune(line, '\r') {
			lines[i] = overwrite(line)
		}
	}
	return strings.Join(lines, "\n")
}

func isPlain(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 0x20 && c != '\t' && c != '\n') || c == 0x7F || c == 0xC2 {
			return false
		}
	}
	return true
}

// overwrite replays CRs within one line: each CR moves the write position
// back to column zero and later runes replace earlier ones.
func overwrite(line string) string {
	segments := strings.Split(line, "\r")
	buf := []rune(segments[0])
	for _, seg := range segments[1:] {
		for j, r := range []rune(seg) {
			if j < len(buf) {
				buf[j] = r
			} else {
				buf = append(buf, r)
			}
		}
	}
	return string(buf)
}
