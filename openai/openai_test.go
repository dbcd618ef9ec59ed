package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/playground"
	"github.com/fwojciec/playground/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamServer(t *testing.T, parts ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, p := range parts {
			_, _ = io.WriteString(w, p)
			w.(http.Flusher).Flush()
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func generate(t *testing.T, client *openai.Client, req playground.GenerateRequest) ([]playground.GenerationChunk, []error) {
	t.Helper()
	var chunks []playground.GenerationChunk
	var errs []error
	client.Generate(context.Background(), req,
		func(c playground.GenerationChunk) { chunks = append(chunks, c) },
		func(err error) { errs = append(errs, err) },
	)
	return chunks, errs
}

func TestClient_RequestFormat(t *testing.T) {
	t.Parallel()
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	temp := 0.5
	client := openai.New("sk-test", openai.WithBaseURL(srv.URL+"/v1"), openai.WithModel("default-model"))
	_, errs := generate(t, client, playground.GenerateRequest{
		Prompt:       "Hello",
		SystemPrompt: "Be kind.",
		Params:       playground.Params{Temperature: &temp, MaxTokens: 100},
	})
	require.Empty(t, errs)

	var body map[string]any
	require.NoError(t, json.Unmarshal(captured, &body))
	assert.Equal(t, "default-model", body["model"])
	assert.Equal(t, true, body["stream"])
	assert.Equal(t, 0.5, body["temperature"])
	assert.Equal(t, float64(100), body["max_tokens"])
	assert.Equal(t, map[string]any{"include_usage": true}, body["stream_options"])

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "Be kind.", msgs[0].(map[string]any)["content"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "Hello", msgs[1].(map[string]any)["content"])
}

func TestClient_RequestModelOverridesDefault(t *testing.T) {
	t.Parallel()
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	_, errs := generate(t, openai.New("", openai.WithBaseURL(srv.URL)), playground.GenerateRequest{
		Prompt: "hi",
		Params: playground.Params{Model: "llama3"},
	})

	require.Empty(t, errs)
	assert.Equal(t, "llama3", body["model"])
}

func TestClient_Stream(t *testing.T) {
	t.Parallel()
	srv := streamServer(t,
		`data: {"id":"c1","object":"chat.completion.chunk","model":"gpt-x","choices":[{"index":0,"delta":{"role":"assistant","content":""},"finish_reason":null}]}`+"\n\n",
		`data: {"id":"c1","object":"chat.completion.chunk","model":"gpt-x","choices":[{"index":0,"delta":{"content":"Hel"},"finish_reason":null}]}`+"\n\n"+
			`data: {"id":"c1","object":"chat.completion.chunk","model":"gpt-x","choices":[{"index":0,"delta":{"content":"lo"},"finish_reason":null}]}`+"\n\n",
		`data: {"id":"c1","object":"chat.completion.chunk","model":"gpt-x","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`+"\n\n",
		`data: {"id":"c1","object":"chat.completion.chunk","model":"gpt-x","choices":[],"usage":{"prompt_tokens":4,"completion_tokens":2,"total_tokens":6}}`+"\n\n",
		"data: [DONE]\n\n",
	)

	chunks, errs := generate(t, openai.New("k", openai.WithBaseURL(srv.URL)), playground.GenerateRequest{Prompt: "hi"})

	require.Empty(t, errs)
	require.Len(t, chunks, 4)
	assert.Equal(t, "Hel", chunks[0].Content)
	assert.Equal(t, "lo", chunks[1].Content)
	assert.Equal(t, "gpt-x", chunks[1].Model)
	assert.True(t, chunks[2].IsComplete)
	assert.Positive(t, chunks[2].ElapsedTime)
	assert.Equal(t, &playground.Usage{PromptTokens: 4, CompletionTokens: 2, TotalTokens: 6}, chunks[3].Usage)
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	defer srv.Close()

	chunks, errs := generate(t, openai.New("bad", openai.WithBaseURL(srv.URL)), playground.GenerateRequest{Prompt: "hi"})

	assert.Empty(t, chunks)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], playground.ErrTransport)
	assert.Contains(t, errs[0].Error(), "HTTP 401: invalid_request_error: Incorrect API key provided")
}

func TestClient_MidStreamError(t *testing.T) {
	t.Parallel()
	srv := streamServer(t,
		`data: {"choices":[{"index":0,"delta":{"content":"par"}}]}`+"\n\n",
		`data: {"error":{"message":"server overloaded","type":"server_error"}}`+"\n\n",
		`data: {"choices":[{"index":0,"delta":{"content":"never"}}]}`+"\n\n",
	)

	chunks, errs := generate(t, openai.New("k", openai.WithBaseURL(srv.URL)), playground.GenerateRequest{Prompt: "hi"})

	require.Len(t, chunks, 1)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], playground.ErrUpstream)
	assert.Contains(t, errs[0].Error(), "server overloaded")
}

func TestClient_MalformedFrameSkipped(t *testing.T) {
	t.Parallel()
	srv := streamServer(t,
		"data: {oops\n\n",
		`data: {"choices":[{"index":0,"delta":{"content":"ok"}}]}`+"\n\n",
	)

	chunks, errs := generate(t, openai.New("k", openai.WithBaseURL(srv.URL)), playground.GenerateRequest{Prompt: "hi"})

	require.Empty(t, errs)
	require.Len(t, chunks, 1)
	assert.Equal(t, "ok", chunks[0].Content)
}

func TestClient_IdleTimeout(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	_, errs := generate(t, openai.New("k", openai.WithBaseURL(srv.URL), openai.WithIdleTimeout(50*time.Millisecond)),
		playground.GenerateRequest{Prompt: "hi"})

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], playground.ErrTimeout)
}

func TestClient_Validation(t *testing.T) {
	t.Parallel()

	_, errs := generate(t, openai.New("k", openai.WithBaseURL("http://unused")), playground.GenerateRequest{})

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], playground.ErrValidation)
}
