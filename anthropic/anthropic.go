// Package anthropic implements [playground.Generator] for the Anthropic
// Messages API.
//
// The response is an event-typed SSE stream decoded with [sse.DecodeFrames];
// a small state machine turns the message_start, content_block_delta,
// message_delta and message_stop events into generation chunks.
package anthropic

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 8192
	apiVersion       = "2023-06-01"
	messagesPath     = "/v1/messages"
	errorBodyLimit   = 64 << 10
)

// apiRequest is the JSON body sent to the Anthropic Messages API.
type apiRequest struct {
	Model       string            `json:"model"`
	MaxTokens   int               `json:"max_tokens"`
	Stream      bool              `json:"stream"`
	System      []apiContentBlock `json:"system,omitempty"`
	Messages    []apiMessage      `json:"messages"`
	Temperature *float64          `json:"temperature,omitempty"`
	TopP        *float64          `json:"top_p,omitempty"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// SSE response types.

type sseMessageStart struct {
	Type    string            `json:"type"`
	Message sseMessagePayload `json:"message"`
}

type sseMessagePayload struct {
	ID    string   `json:"id"`
	Model string   `json:"model"`
	Usage sseUsage `json:"usage"`
}

type sseUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type sseContentBlockDelta struct {
	Type  string   `json:"type"`
	Index int      `json:"index"`
	Delta sseDelta `json:"delta"`
}

type sseDelta struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Thinking string `json:"thinking,omitempty"`
}

// sseMessageDelta carries the stop reason and the cumulative output token
// count. Input tokens are only repeated here by some API versions.
type sseMessageDelta struct {
	Type  string             `json:"type"`
	Delta sseMessageDeltaVal `json:"delta"`
	Usage sseDeltaUsage      `json:"usage"`
}

type sseMessageDeltaVal struct {
	StopReason *string `json:"stop_reason"`
}

type sseDeltaUsage struct {
	OutputTokens int  `json:"output_tokens"`
	InputTokens  *int `json:"input_tokens,omitempty"`
}

type sseError struct {
	Type  string         `json:"type"`
	Error sseErrorDetail `json:"error"`
}

type sseErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// apiErrorResponse is the JSON body returned on non-200 HTTP responses.
type apiErrorResponse struct {
	Type  string         `json:"type"`
	Error sseErrorDetail `json:"error"`
}
