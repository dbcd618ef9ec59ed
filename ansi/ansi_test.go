package ansi_test

import (
	"testing"

	"github.com/fwojciec/playground/ansi"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text unchanged", "hello world", "hello world"},
		{"unicode unchanged", "zażółć 🎉 日本", "zażółć 🎉 日本"},
		{"strips color codes", "\x1b[31mhello\x1b[0m", "hello"},
		{"strips window title", "\x1b]0;pwned\x07title", "title"},
		{"strips cursor movement", "a\x1b[2Jb\x1b[10;10Hc", "abc"},
		{"keeps tabs and newlines", "a\tb\nc", "a\tb\nc"},
		{"removes control characters", "a\x01b\x02c\x07", "abc"},
		{"removes DEL", "a\x7fb", "ab"},
		{"normalizes CRLF", "a\r\nb\r\n", "a\nb\n"},
		{"resolves lone CR", "progress 50%\rprogress done", "progress done"},
		{"shorter overwrite keeps tail", "abcdef\rXY", "XYcdef"},
		{"CR per line", "one\rtwo\nthree", "two\nthree"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ansi.Sanitize(tt.in))
		})
	}
}
