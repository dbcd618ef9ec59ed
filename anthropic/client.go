package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/playground"
	"github.com/fwojciec/playground/sse"
	"github.com/rs/zerolog"
)

// Interface compliance check.
var _ playground.Generator = (*Client)(nil)

// Client implements [playground.Generator] for the Anthropic Messages API.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	logger      zerolog.Logger
	idleTimeout time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithIdleTimeout aborts a stream that stays silent for d. Anthropic sends
// ping events, so a silent stream is a dead one.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Client) { c.idleTimeout = d }
}

// New creates a new Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Generate streams a single-turn message for req.
func (c *Client) Generate(ctx context.Context, req playground.GenerateRequest, onChunk func(playground.GenerationChunk), onError func(error)) {
	failed := false
	fail := func(err error) {
		failed = true
		if onError != nil {
			onError(err)
		}
	}
	if err := req.Validate(); err != nil {
		fail(fmt.Errorf("anthropic: %w", err))
		return
	}

	ctx, wd := sse.NewWatchdog(ctx, c.idleTimeout)
	defer wd.Stop()

	body, err := buildRequestBody(req)
	if err != nil {
		fail(fmt.Errorf("anthropic: %w", err))
		return
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		fail(fmt.Errorf("anthropic: %w", err))
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		fail(fmt.Errorf("anthropic: %w", sse.Classify(ctx, err)))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fail(parseHTTPError(resp))
		return
	}

	s := newStream(onChunk, c.logger)
	sse.DecodeFrames(ctx, wd.Wrap(sse.NewReaderSource(resp.Body, 0)), s.processFrame, fail, sse.WithLogger(c.logger))
	if !failed && !s.done {
		fail(fmt.Errorf("anthropic: %w: unexpected end of stream", playground.ErrTransport))
	}
}

func buildRequestBody(req playground.GenerateRequest) ([]byte, error) {
	model := req.Params.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := req.Params.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	apiReq := apiRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Stream:    true,
		System:    convertSystem(req.SystemPrompt),
		Messages: []apiMessage{{
			Role:    "user",
			Content: []apiContentBlock{{Type: "text", Text: req.Prompt}},
		}},
		Temperature: req.Params.Temperature,
		TopP:        req.Params.TopP,
	}
	return json.Marshal(apiReq)
}

// convertSystem converts a system prompt string to an array of content blocks
// suitable for the Anthropic API. Returns nil when the prompt is empty.
func convertSystem(prompt string) []apiContentBlock {
	if prompt == "" {
		return nil
	}
	return []apiContentBlock{{Type: "text", Text: prompt}}
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if err != nil {
		return fmt.Errorf("anthropic: %w: HTTP %d (failed to read body: %w)", playground.ErrTransport, resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("anthropic: %w: HTTP %d: %s", playground.ErrTransport, resp.StatusCode, string(body))
	}
	return fmt.Errorf("anthropic: %w: HTTP %d: %s: %s", playground.ErrTransport, resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
}
