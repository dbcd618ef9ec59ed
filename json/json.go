// Package json persists playground transcripts as JSON documents.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/playground"
)

// envelope is the v1 wire format for a persisted transcript.
type envelope struct {
	Version     int         `json:"version"`
	ID          string      `json:"id"`
	Kind        string      `json:"kind"`
	Input       string      `json:"input"`
	Params      paramsDTO   `json:"params"`
	Content     string      `json:"content"`
	Usage       *usageDTO   `json:"usage,omitempty"`
	Sources     []sourceDTO `json:"sources,omitempty"`
	Confidence  *float64    `json:"confidence,omitempty"`
	Status      string      `json:"status,omitempty"`
	Progress    float64     `json:"progress,omitempty"`
	Artifacts   []string    `json:"artifacts,omitempty"`
	ElapsedMS   int64       `json:"elapsed_ms"`
	Chunks      int         `json:"chunks"`
	State       string      `json:"state"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

type paramsDTO struct {
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
}

type usageDTO struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type sourceDTO struct {
	ID      string  `json:"id,omitempty"`
	Title   string  `json:"title,omitempty"`
	URI     string  `json:"uri,omitempty"`
	Snippet string  `json:"snippet,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

var states = map[string]playground.StreamState{
	"new":       playground.StreamStateNew,
	"streaming": playground.StreamStateStreaming,
	"complete":  playground.StreamStateComplete,
	"error":     playground.StreamStateError,
	"canceled":  playground.StreamStateCanceled,
}

// MarshalTranscript serializes a Transcript to JSON in v1 envelope format.
func MarshalTranscript(t playground.Transcript) ([]byte, error) {
	if _, ok := states[t.State.String()]; !ok {
		return nil, fmt.Errorf("unknown stream state: %d", t.State)
	}
	env := envelope{
		Version: 1,
		ID:      t.ID,
		Kind:    string(t.Kind),
		Input:   t.Input,
		Params: paramsDTO{
			Model:       t.Params.Model,
			Temperature: t.Params.Temperature,
			MaxTokens:   t.Params.MaxTokens,
			TopP:        t.Params.TopP,
		},
		Content:    t.Content,
		Confidence: t.Confidence,
		Status:     t.Status,
		Progress:   t.Progress,
		Artifacts:  t.Artifacts,
		ElapsedMS:  t.Elapsed.Milliseconds(),
		Chunks:     t.Chunks,
		State:      t.State.String(),
		Error:      t.Err,
		CreatedAt:  t.CreatedAt,
	}
	if t.Usage != nil {
		env.Usage = &usageDTO{
			PromptTokens:     t.Usage.PromptTokens,
			CompletionTokens: t.Usage.CompletionTokens,
			TotalTokens:      t.Usage.TotalTokens,
		}
	}
	for _, s := range t.Sources {
		env.Sources = append(env.Sources, sourceDTO(s))
	}
	if !t.CompletedAt.IsZero() {
		completed := t.CompletedAt
		env.CompletedAt = &completed
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalTranscript deserializes a Transcript from JSON in v1 envelope
// format.
func UnmarshalTranscript(data []byte) (playground.Transcript, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return playground.Transcript{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return playground.Transcript{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	kind := playground.Kind(env.Kind)
	switch kind {
	case playground.KindGenerate, playground.KindSummarize, playground.KindQuery, playground.KindVideo:
	default:
		return playground.Transcript{}, fmt.Errorf("unknown transcript kind: %q", env.Kind)
	}
	state, ok := states[env.State]
	if !ok {
		return playground.Transcript{}, fmt.Errorf("unknown stream state: %q", env.State)
	}

	t := playground.Transcript{
		ID:    env.ID,
		Kind:  kind,
		Input: env.Input,
		Params: playground.Params{
			Model:       env.Params.Model,
			Temperature: env.Params.Temperature,
			MaxTokens:   env.Params.MaxTokens,
			TopP:        env.Params.TopP,
		},
		Content:    env.Content,
		Confidence: env.Confidence,
		Status:     env.Status,
		Progress:   env.Progress,
		Artifacts:  env.Artifacts,
		Elapsed:    time.Duration(env.ElapsedMS) * time.Millisecond,
		Chunks:     env.Chunks,
		State:      state,
		Err:        env.Error,
		CreatedAt:  env.CreatedAt,
	}
	if env.Usage != nil {
		t.Usage = &playground.Usage{
			PromptTokens:     env.Usage.PromptTokens,
			CompletionTokens: env.Usage.CompletionTokens,
			TotalTokens:      env.Usage.TotalTokens,
		}
	}
	for _, s := range env.Sources {
		t.Sources = append(t.Sources, playground.Source(s))
	}
	if env.CompletedAt != nil {
		t.CompletedAt = *env.CompletedAt
	}
	return t, nil
}

// Save writes a Transcript to a JSON file, creating parent directories as
// needed.
func Save(path string, t playground.Transcript) error {
	data, err := MarshalTranscript(t)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Transcript from a JSON file.
func Load(path string) (playground.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return playground.Transcript{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalTranscript(data)
}
