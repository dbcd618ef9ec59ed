package playground

import (
	"fmt"
	"strings"
)

// Params carries model selection and generation parameters. It replaces the
// ambient "selected model / temperature" state a UI would otherwise thread
// through every call. The backend uses its own defaults when fields are zero/nil.
type Params struct {
	Model       string   // empty = backend default
	Temperature *float64 // nil = backend default
	MaxTokens   int      // 0 = backend default
	TopP        *float64 // nil = backend default
}

// Validate checks universal constraints on Params.
func (p Params) Validate() error {
	if p.Temperature != nil {
		if *p.Temperature < 0 || *p.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *p.Temperature, ErrValidation)
		}
	}
	if p.TopP != nil {
		if *p.TopP <= 0 || *p.TopP > 1 {
			return fmt.Errorf("top_p must be in (0, 1], got %g: %w", *p.TopP, ErrValidation)
		}
	}
	if p.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", p.MaxTokens, ErrValidation)
	}
	return nil
}

// GenerateRequest asks for free-form text generation.
type GenerateRequest struct {
	Prompt       string
	SystemPrompt string
	Params       Params
}

// Validate checks the request.
func (r GenerateRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt must not be empty: %w", ErrValidation)
	}
	return r.Params.Validate()
}

// SummaryLength selects how long a summary should be.
type SummaryLength string

const (
	SummaryShort  SummaryLength = "short"
	SummaryMedium SummaryLength = "medium"
	SummaryLong   SummaryLength = "long"
)

// SummarizeRequest asks for a summary of Text.
type SummarizeRequest struct {
	Text   string
	Length SummaryLength // empty = medium
	Params Params
}

// Validate checks the request.
func (r SummarizeRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("text must not be empty: %w", ErrValidation)
	}
	switch r.Length {
	case "", SummaryShort, SummaryMedium, SummaryLong:
	default:
		return fmt.Errorf("unknown summary length %q: %w", r.Length, ErrValidation)
	}
	return r.Params.Validate()
}

// QueryRequest asks a question answered from the given document collections.
type QueryRequest struct {
	Question    string
	Collections []string // empty = all collections
	TopK        int      // 0 = backend default
	Params      Params
}

// Validate checks the request.
func (r QueryRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("question must not be empty: %w", ErrValidation)
	}
	if r.TopK < 0 {
		return fmt.Errorf("top_k must be non-negative, got %d: %w", r.TopK, ErrValidation)
	}
	return r.Params.Validate()
}

// VideoRequest asks for a generated video.
type VideoRequest struct {
	Prompt          string
	DurationSeconds int    // 0 = backend default
	Resolution      string // e.g. "1280x720"; empty = backend default
	Params          Params
}

// Validate checks the request.
func (r VideoRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt must not be empty: %w", ErrValidation)
	}
	if r.DurationSeconds < 0 {
		return fmt.Errorf("duration must be non-negative, got %d: %w", r.DurationSeconds, ErrValidation)
	}
	return r.Params.Validate()
}

// ImageRequest asks for generated images.
type ImageRequest struct {
	Prompt string
	Size   string // e.g. "1024x1024"; empty = backend default
	Count  int    // 0 = 1
	Params Params
}

// Validate checks the request.
func (r ImageRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt must not be empty: %w", ErrValidation)
	}
	if r.Count < 0 {
		return fmt.Errorf("count must be non-negative, got %d: %w", r.Count, ErrValidation)
	}
	return r.Params.Validate()
}

// AudioRequest asks for synthesized speech.
type AudioRequest struct {
	Text   string
	Voice  string // empty = backend default
	Format string // e.g. "mp3"; empty = backend default
	Params Params
}

// Validate checks the request.
func (r AudioRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("text must not be empty: %w", ErrValidation)
	}
	return r.Params.Validate()
}
