package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/playground"
	"github.com/fwojciec/playground/sse"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Interface compliance checks.
var (
	_ playground.Generator      = (*Client)(nil)
	_ playground.Summarizer     = (*Client)(nil)
	_ playground.Answerer       = (*Client)(nil)
	_ playground.VideoGenerator = (*Client)(nil)
	_ playground.Catalog        = (*Client)(nil)
	_ playground.MediaGenerator = (*Client)(nil)
)

// Timeouts bounds each kind of call. A zero value disables that bound.
type Timeouts struct {
	Generate  time.Duration
	Summarize time.Duration
	Query     time.Duration
	Video     time.Duration
	Media     time.Duration // image and audio
	Metadata  time.Duration // models and collections
	Idle      time.Duration // longest silence tolerated inside a stream
}

// DefaultTimeouts returns the ceilings used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Generate:  5 * time.Minute,
		Summarize: 5 * time.Minute,
		Query:     5 * time.Minute,
		Video:     5 * time.Minute,
		Media:     2 * time.Minute,
		Metadata:  6 * time.Second,
	}
}

// Client talks to the playground backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         zerolog.Logger
	header         http.Header
	timeouts       Timeouts
	stopOnComplete bool
	newRequestID   func() string
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for request lifecycle and skipped frames.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Add(key, value) }
}

// WithTimeouts replaces the default timeouts.
func WithTimeouts(t Timeouts) Option {
	return func(c *Client) { c.timeouts = t }
}

// WithStopOnComplete makes streams end as soon as a chunk is flagged complete
// instead of waiting for the backend to close the stream.
func WithStopOnComplete(stop bool) Option {
	return func(c *Client) { c.stopOnComplete = stop }
}

// WithRequestID overrides the generator of X-Request-Id values.
func WithRequestID(fn func() string) Option {
	return func(c *Client) { c.newRequestID = fn }
}

// New creates a [Client] for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   http.DefaultClient,
		logger:       zerolog.Nop(),
		header:       make(http.Header),
		timeouts:     DefaultTimeouts(),
		newRequestID: uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// withTimeout derives a context bounded by d. The cause recorded on expiry
// names the endpoint so the error reaching onError is self-explanatory.
func withTimeout(ctx context.Context, d time.Duration, path string) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeoutCause(ctx, d, fmt.Errorf("%w: %s exceeded %s", playground.ErrTimeout, path, d))
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, string, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, "", err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, "", err
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	id := c.newRequestID()
	req.Header.Set(requestIDHeader, id)
	return req, id, nil
}

// stream runs one streaming call: W is the wire chunk decoded from each
// frame, C the domain chunk handed to onChunk.
func stream[W interface{ convert() C }, C any](
	ctx context.Context,
	c *Client,
	path string,
	timeout time.Duration,
	body any,
	onChunk func(C),
	onError func(error),
) {
	ctx, cancel := withTimeout(ctx, timeout, path)
	defer cancel()
	ctx, wd := sse.NewWatchdog(ctx, c.timeouts.Idle)
	defer wd.Stop()

	fail := func(err error) {
		if onError != nil {
			onError(err)
		}
	}

	req, id, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		fail(fmt.Errorf("backend: %w", err))
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	log := c.logger.With().Str("path", path).Str("request_id", id).Logger()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		fail(fmt.Errorf("backend: %w", sse.Classify(ctx, err)))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := parseHTTPError(resp)
		log.Debug().Int("status", resp.StatusCode).Err(err).Msg("backend: request rejected")
		fail(err)
		return
	}
	log.Debug().Int("status", resp.StatusCode).Msg("backend: stream opened")

	opts := []sse.Option{sse.WithLogger(log), sse.WithEncoding(bodyEncoding(resp.Header.Get("Content-Type"), log))}
	if c.stopOnComplete {
		opts = append(opts, sse.StopOnComplete())
	}
	sse.Decode(ctx, wd.Wrap(sse.NewReaderSource(resp.Body, 0)),
		func(w W) {
			if onChunk != nil {
				onChunk(w.convert())
			}
		},
		fail,
		opts...,
	)
	log.Debug().Dur("elapsed", time.Since(start)).Msg("backend: stream closed")
}

// call runs one plain JSON call and decodes the response into out.
func (c *Client) call(ctx context.Context, method, path string, timeout time.Duration, body, out any) error {
	ctx, cancel := withTimeout(ctx, timeout, path)
	defer cancel()

	req, id, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %w", sse.Classify(ctx, err))
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("path", path).Str("request_id", id).Int("status", resp.StatusCode).Msg("backend: call")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseHTTPError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("backend: %w", sse.Classify(ctx, err))
		}
		return fmt.Errorf("backend: decode %s response: %w", path, err)
	}
	return nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if err != nil {
		return fmt.Errorf("backend: %w: HTTP %d (failed to read body: %w)", playground.ErrTransport, resp.StatusCode, err)
	}
	msg := sse.ErrorMessage(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("backend: %w: HTTP %d: %s", playground.ErrTransport, resp.StatusCode, msg)
}

// bodyEncoding resolves the charset parameter of a Content-Type header.
// Missing or unknown charsets fall back to UTF-8.
func bodyEncoding(contentType string, log zerolog.Logger) encoding.Encoding {
	if contentType == "" {
		return nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	name := params["charset"]
	if name == "" {
		return nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		log.Warn().Str("charset", name).Msg("backend: unknown charset, assuming utf-8")
		return nil
	}
	return enc
}
