package gemini

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fwojciec/playground"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ playground.Generator = (*Client)(nil)

// Client implements [playground.Generator] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
	logger zerolog.Logger
}

type settings struct {
	model      string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a [Client].
type Option func(*settings)

// WithModel sets the model used when a request does not name one.
func WithModel(model string) Option {
	return func(s *settings) { s.model = model }
}

// WithBaseURL points the SDK at a different endpoint, e.g. a proxy.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = url }
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	s := settings{model: defaultModel, logger: zerolog.Nop()}
	for _, o := range opts {
		o(&s)
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: s.httpClient,
	}
	if s.baseURL != "" {
		cfg.HTTPOptions.BaseURL = s.baseURL
	}
	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &Client{client: gc, model: s.model, logger: s.logger}, nil
}

// Generate streams content for req.
func (c *Client) Generate(ctx context.Context, req playground.GenerateRequest, onChunk func(playground.GenerationChunk), onError func(error)) {
	if err := req.Validate(); err != nil {
		if onError != nil {
			onError(fmt.Errorf("gemini: %w", err))
		}
		return
	}
	model := req.Params.Model
	if model == "" {
		model = c.model
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}
	c.logger.Debug().Str("model", model).Msg("gemini: stream opened")
	seq := c.client.Models.GenerateContentStream(ctx, model, contents, buildConfig(req))
	StreamFromIter(ctx, seq, onChunk, onError)
}

func buildConfig(req playground.GenerateRequest) *genai.GenerateContentConfig {
	maxTokens := req.Params.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Params.Temperature != nil {
		temp := float32(*req.Params.Temperature)
		config.Temperature = &temp
	}
	if req.Params.TopP != nil {
		topP := float32(*req.Params.TopP)
		config.TopP = &topP
	}

	return config
}
