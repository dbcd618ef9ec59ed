// Package gemini implements [playground.Generator] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. Streaming consumes the SDK's
// iter.Seq2 iterator and pushes every response through the same
// onChunk/onError contract the SSE based generators follow.
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 65536
)
