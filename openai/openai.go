// Package openai implements [playground.Generator] for OpenAI-compatible chat
// completion endpoints.
//
// Requests and stream chunks use the go-openai wire types; the response body
// is decoded by [sse.DecodeFrames], which also handles the [DONE] terminator
// these endpoints send.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/playground"
	"github.com/fwojciec/playground/sse"
	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"
)

const (
	defaultBaseURL  = "https://api.openai.com/v1"
	defaultModel    = "gpt-4o-mini"
	completionsPath = "/chat/completions"
	errorBodyLimit  = 64 << 10
)

// Interface compliance check.
var _ playground.Generator = (*Client)(nil)

// Client implements [playground.Generator] against /chat/completions.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	logger      zerolog.Logger
	idleTimeout time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL, e.g. a local OpenAI-compatible server.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModel sets the model used when a request does not name one.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithIdleTimeout aborts a stream that stays silent for d.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Client) { c.idleTimeout = d }
}

// New creates a [Client] authenticating with apiKey. An empty key sends no
// Authorization header, which local servers usually accept.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Generate streams a chat completion for req.
func (c *Client) Generate(ctx context.Context, req playground.GenerateRequest, onChunk func(playground.GenerationChunk), onError func(error)) {
	fail := func(err error) {
		if onError != nil {
			onError(err)
		}
	}
	if err := req.Validate(); err != nil {
		fail(fmt.Errorf("openai: %w", err))
		return
	}

	ctx, wd := sse.NewWatchdog(ctx, c.idleTimeout)
	defer wd.Stop()

	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		fail(fmt.Errorf("openai: %w", err))
		return
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		fail(fmt.Errorf("openai: %w", err))
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		fail(fmt.Errorf("openai: %w", sse.Classify(ctx, err)))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fail(parseHTTPError(resp))
		return
	}

	sse.DecodeFrames(ctx, wd.Wrap(sse.NewReaderSource(resp.Body, 0)),
		func(f sse.Frame) error {
			var r streamResponse
			if err := json.Unmarshal([]byte(f.Data), &r); err != nil {
				c.logger.Warn().Err(err).Msg("openai: skipping malformed frame")
				return nil
			}
			if r.Error != nil || f.Event == sse.EventError {
				return fmt.Errorf("openai: %w: %s", playground.ErrUpstream, sse.ErrorMessage(f.Data))
			}
			chunk, ok := convertChunk(r.ChatCompletionStreamResponse, time.Since(start))
			if ok && onChunk != nil {
				onChunk(chunk)
			}
			return nil
		},
		fail,
		sse.WithLogger(c.logger),
	)
}

// streamResponse is a stream frame, which is either a completion delta or an
// error object.
type streamResponse struct {
	goopenai.ChatCompletionStreamResponse
	Error *goopenai.APIError `json:"error,omitempty"`
}

func (c *Client) buildRequest(req playground.GenerateRequest) goopenai.ChatCompletionRequest {
	model := req.Params.Model
	if model == "" {
		model = c.model
	}
	var msgs []goopenai.ChatCompletionMessage
	if req.SystemPrompt != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt})

	out := goopenai.ChatCompletionRequest{
		Model:         model,
		Messages:      msgs,
		MaxTokens:     req.Params.MaxTokens,
		Stream:        true,
		StreamOptions: &goopenai.StreamOptions{IncludeUsage: true},
	}
	if t := req.Params.Temperature; t != nil {
		out.Temperature = float32(*t)
	}
	if p := req.Params.TopP; p != nil {
		out.TopP = float32(*p)
	}
	return out
}

// convertChunk maps one stream response. It reports false for responses that
// carry nothing for the caller, such as the role-only opening delta.
func convertChunk(r goopenai.ChatCompletionStreamResponse, elapsed time.Duration) (playground.GenerationChunk, bool) {
	chunk := playground.GenerationChunk{Model: r.Model}
	if len(r.Choices) > 0 {
		choice := r.Choices[0]
		chunk.Content = choice.Delta.Content
		if choice.FinishReason != "" && choice.FinishReason != goopenai.FinishReasonNull {
			chunk.IsComplete = true
			chunk.ElapsedTime = elapsed
		}
	}
	if u := r.Usage; u != nil {
		chunk.Usage = &playground.Usage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		}
	}
	ok := chunk.Content != "" || chunk.IsComplete || chunk.Usage != nil
	return chunk, ok
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if err != nil {
		return fmt.Errorf("openai: %w: HTTP %d (failed to read body: %w)", playground.ErrTransport, resp.StatusCode, err)
	}
	var apiErr goopenai.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
		if apiErr.Error.Type != "" {
			return fmt.Errorf("openai: %w: HTTP %d: %s: %s", playground.ErrTransport, resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return fmt.Errorf("openai: %w: HTTP %d: %s", playground.ErrTransport, resp.StatusCode, apiErr.Error.Message)
	}
	return fmt.Errorf("openai: %w: HTTP %d: %s", playground.ErrTransport, resp.StatusCode, sse.ErrorMessage(string(body)))
}
