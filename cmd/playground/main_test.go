package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/playground"
	pgjson "github.com/fwojciec/playground/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves fixed SSE bodies per path and records request bodies.
type fakeBackend struct {
	srv    *httptest.Server
	bodies map[string][]byte
}

func newFakeBackend(t *testing.T, routes map[string]string) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{bodies: make(map[string][]byte)}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"no such route"}`)
			return
		}
		data, _ := io.ReadAll(r.Body)
		fb.bodies[r.URL.Path] = data
		if strings.HasSuffix(r.URL.Path, "/stream") {
			w.Header().Set("Content-Type", "text/event-stream")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

type result struct {
	err    error
	stdout string
	stderr string
}

func runCLI(t *testing.T, env map[string]string, stdin string, args ...string) result {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o644))
	args = append([]string{"--config", cfgPath}, args...)

	var stdout, stderr bytes.Buffer
	getenv := func(k string) string { return env[k] }
	err := run(context.Background(), args, getenv, strings.NewReader(stdin), &stdout, &stderr)
	return result{err: err, stdout: stdout.String(), stderr: stderr.String()}
}

func backendEnv(url string) map[string]string {
	return map[string]string{"PLAYGROUND_BASE_URL": url, "PLAYGROUND_LOG_LEVEL": "off"}
}

func TestRun_Help(t *testing.T) {
	t.Parallel()
	var stdout bytes.Buffer
	err := run(context.Background(), []string{"--help"}, func(string) string { return "" }, strings.NewReader(""), &stdout, io.Discard)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "generate")
	assert.Contains(t, stdout.String(), "summarize")
	assert.Contains(t, stdout.String(), "--base-url")
}

func TestRun_CommandRequired(t *testing.T) {
	t.Parallel()
	res := runCLI(t, nil, "")
	require.Error(t, res.err)
}

func TestRun_Generate(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, map[string]string{
		"/api/generate/stream": `data: {"content":"Hello "}` + "\n\n" +
			`data: {"content":"world","is_complete":true,"usage":{"prompt_tokens":2,"completion_tokens":3,"total_tokens":5},"elapsed_time":0.5}` + "\n\n" +
			"data: [DONE]\n\n",
	})

	res := runCLI(t, backendEnv(fb.srv.URL), "", "--model", "m1", "generate", "--system", "be brief", "say", "hi")

	require.NoError(t, res.err)
	assert.Equal(t, "Hello world\n", res.stdout)
	assert.Contains(t, res.stderr, "5 tokens")

	var req map[string]any
	require.NoError(t, json.Unmarshal(fb.bodies["/api/generate/stream"], &req))
	assert.Equal(t, "say hi", req["prompt"])
	assert.Equal(t, "be brief", req["system_prompt"])
	assert.Equal(t, "m1", req["model"])
}

func TestRun_GenerateStripsEscapeSequences(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, map[string]string{
		"/api/generate/stream": `data: {"content":"\u001b]0;pwned\u0007\u001b[31mHi\u001b[0m","is_complete":true}` + "\n\n",
	})

	res := runCLI(t, backendEnv(fb.srv.URL), "", "generate", "hi")

	require.NoError(t, res.err)
	assert.Equal(t, "Hi\n", res.stdout)
}

func TestRun_GenerateFromStdin(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, map[string]string{
		"/api/generate/stream": `data: {"content":"ok","is_complete":true}` + "\n\n",
	})

	res := runCLI(t, backendEnv(fb.srv.URL), "piped prompt\n", "generate")

	require.NoError(t, res.err)
	var req map[string]any
	require.NoError(t, json.Unmarshal(fb.bodies["/api/generate/stream"], &req))
	assert.Equal(t, "piped prompt", req["prompt"])
}

func TestRun_AskUsesConfiguredCollectionsAndReportsSources(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, map[string]string{
		"/api/query/stream": `data: {"content":"","sources":[{"id":"d1","title":"Guide","url":"https://x/d1","score":0.9}]}` + "\n\n" +
			`data: {"content":"Use flags.","is_complete":true,"confidence":0.75}` + "\n\n",
	})

	res := runCLI(t, backendEnv(fb.srv.URL), "", "ask", "-c", "docs", "--top-k", "3", "how?")

	require.NoError(t, res.err)
	assert.Equal(t, "Use flags.\n", res.stdout)
	assert.Contains(t, res.stderr, "[1] Guide <https://x/d1>")
	assert.Contains(t, res.stderr, "confidence 75%")

	var req map[string]any
	require.NoError(t, json.Unmarshal(fb.bodies["/api/query/stream"], &req))
	assert.Equal(t, []any{"docs"}, req["collections"])
	assert.EqualValues(t, 3, req["top_k"])
}

func TestRun_VideoPrintsProgressAndArtifact(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, map[string]string{
		"/api/video/stream": `data: {"content":"","status":"rendering","progress":40}` + "\n\n" +
			`data: {"content":"","status":"done","progress":100,"video_url":"https://cdn/v.mp4","is_complete":true}` + "\n\n",
	})

	res := runCLI(t, backendEnv(fb.srv.URL), "", "video", "--duration", "4", "a cat")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "https://cdn/v.mp4")
	assert.Contains(t, res.stderr, "[ 40%] rendering")
	assert.Contains(t, res.stderr, "[100%] done")
}

func TestRun_SaveAndHTML(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, map[string]string{
		"/api/summarize/stream": `data: {"content":"**Short.**","is_complete":true}` + "\n\n",
	})
	dir := t.TempDir()
	savePath := filepath.Join(dir, "out", "run.json")
	htmlPath := filepath.Join(dir, "run.html")

	res := runCLI(t, backendEnv(fb.srv.URL), "", "--save", savePath, "--html", htmlPath, "summarize", "--length", "short", "long text")

	require.NoError(t, res.err)
	saved, err := pgjson.Load(savePath)
	require.NoError(t, err)
	assert.Equal(t, playground.KindSummarize, saved.Kind)
	assert.Equal(t, "long text", saved.Input)
	assert.Equal(t, "**Short.**", saved.Content)
	assert.Equal(t, playground.StreamStateComplete, saved.State)
	assert.NotEmpty(t, saved.ID)

	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<strong>Short.</strong>")
}

func TestRun_SummarizeFiles(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, map[string]string{
		"/api/summarize/stream": `data: {"content":"ok","is_complete":true}` + "\n\n",
	})
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("remember this"), 0o644))

	res := runCLI(t, backendEnv(fb.srv.URL), "", "summarize", "--files", filepath.Join(dir, "*.md"))

	require.NoError(t, res.err)
	var req map[string]any
	require.NoError(t, json.Unmarshal(fb.bodies["/api/summarize/stream"], &req))
	assert.Contains(t, req["text"], "remember this")
}

func TestRun_StreamErrorIsReturned(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, map[string]string{})

	res := runCLI(t, backendEnv(fb.srv.URL), "", "generate", "hi")

	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, playground.ErrTransport)
	assert.Contains(t, res.err.Error(), "no such route")
}

func TestRun_Models(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, map[string]string{
		"/api/models": `{"models":[{"id":"m1","name":"Model One","type":"text","description":"fast"}]}`,
	})

	res := runCLI(t, backendEnv(fb.srv.URL), "", "models")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "ID")
	assert.Contains(t, res.stdout, "m1")
	assert.Contains(t, res.stdout, "Model One")
}

func TestRun_Collections(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, map[string]string{
		"/api/collections": `{"collections":[{"name":"docs","document_count":12,"tags":["a","b"]}]}`,
	})

	res := runCLI(t, backendEnv(fb.srv.URL), "", "collections")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "docs")
	assert.Contains(t, res.stdout, "12")
	assert.Contains(t, res.stdout, "a, b")
}

func TestRun_AudioWritesFile(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, map[string]string{
		"/api/audio": `{"audio":"aGk=","mime_type":"audio/mpeg","duration":1.5}`,
	})
	out := filepath.Join(t.TempDir(), "speech.mp3")

	res := runCLI(t, backendEnv(fb.srv.URL), "", "audio", "-o", out, "hello")

	require.NoError(t, res.err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
	assert.Contains(t, res.stdout, "(1.5s)")
}

func TestRun_ConfigErrors(t *testing.T) {
	t.Parallel()

	t.Run("invalid temperature", func(t *testing.T) {
		t.Parallel()
		res := runCLI(t, backendEnv("http://127.0.0.1:1"), "", "--temperature", "3", "generate", "hi")
		require.Error(t, res.err)
		assert.ErrorIs(t, res.err, playground.ErrValidation)
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()
		res := runCLI(t, backendEnv("http://127.0.0.1:1"), "", "--provider", "mistral", "generate", "hi")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "unknown provider")
	})

	t.Run("missing api key", func(t *testing.T) {
		t.Parallel()
		res := runCLI(t, backendEnv("http://127.0.0.1:1"), "", "--provider", "openai", "generate", "hi")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "OPENAI_API_KEY not set")
	})

	t.Run("unknown config key", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("colour = \"red\"\n"), 0o644))
		err := run(context.Background(), []string{"--config", path, "generate", "hi"},
			func(string) string { return "" }, strings.NewReader(""), io.Discard, io.Discard)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown key")
	})
}
