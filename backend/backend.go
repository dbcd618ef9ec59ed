// Package backend implements the playground service interfaces against the
// playground HTTP backend.
//
// The four generation endpoints answer with server-sent events and are decoded
// with [sse.Decode]; models, collections, image and audio are plain JSON
// request/response calls.
package backend

import (
	"time"

	"github.com/fwojciec/playground"
)

const (
	generatePath    = "/api/generate/stream"
	summarizePath   = "/api/summarize/stream"
	queryPath       = "/api/query/stream"
	videoPath       = "/api/video/stream"
	modelsPath      = "/api/models"
	collectionsPath = "/api/collections"
	imagePath       = "/api/image"
	audioPath       = "/api/audio"

	requestIDHeader = "X-Request-Id"
	errorBodyLimit  = 64 << 10
)

// Request bodies.

type apiParams struct {
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
}

func convertParams(p playground.Params) apiParams {
	return apiParams{
		Model:       p.Model,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		TopP:        p.TopP,
	}
}

type apiGenerateRequest struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	apiParams
}

type apiSummarizeRequest struct {
	Text   string `json:"text"`
	Length string `json:"length,omitempty"`
	apiParams
}

type apiQueryRequest struct {
	Question    string   `json:"question"`
	Collections []string `json:"collections,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	apiParams
}

type apiVideoRequest struct {
	Prompt     string `json:"prompt"`
	Duration   int    `json:"duration,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	apiParams
}

type apiImageRequest struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size,omitempty"`
	N      int    `json:"n,omitempty"`
	apiParams
}

type apiAudioRequest struct {
	Text   string `json:"text"`
	Voice  string `json:"voice,omitempty"`
	Format string `json:"format,omitempty"`
	apiParams
}

// Stream chunks. ElapsedTime is in seconds.

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u *apiUsage) convert() *playground.Usage {
	if u == nil {
		return nil
	}
	return &playground.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

type apiGenerationChunk struct {
	Content     string    `json:"content"`
	IsComplete  bool      `json:"is_complete"`
	Usage       *apiUsage `json:"usage"`
	ElapsedTime float64   `json:"elapsed_time"`
	Model       string    `json:"model"`
}

// Complete lets the decoder stop on the completion flag when asked to.
func (c apiGenerationChunk) Complete() bool { return c.IsComplete }

func (c apiGenerationChunk) convert() playground.GenerationChunk {
	return playground.GenerationChunk{
		Content:     c.Content,
		IsComplete:  c.IsComplete,
		Usage:       c.Usage.convert(),
		ElapsedTime: seconds(c.ElapsedTime),
		Model:       c.Model,
	}
}

type apiSummaryChunk struct {
	Content          string    `json:"content"`
	IsComplete       bool      `json:"is_complete"`
	Usage            *apiUsage `json:"usage"`
	ElapsedTime      float64   `json:"elapsed_time"`
	CompressionRatio float64   `json:"compression_ratio"`
}

func (c apiSummaryChunk) Complete() bool { return c.IsComplete }

func (c apiSummaryChunk) convert() playground.SummaryChunk {
	return playground.SummaryChunk{
		Content:          c.Content,
		IsComplete:       c.IsComplete,
		Usage:            c.Usage.convert(),
		ElapsedTime:      seconds(c.ElapsedTime),
		CompressionRatio: c.CompressionRatio,
	}
}

type apiSource struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

type apiAnswerChunk struct {
	Content     string      `json:"content"`
	IsComplete  bool        `json:"is_complete"`
	Sources     []apiSource `json:"sources"`
	Confidence  *float64    `json:"confidence"`
	Usage       *apiUsage   `json:"usage"`
	ElapsedTime float64     `json:"elapsed_time"`
}

func (c apiAnswerChunk) Complete() bool { return c.IsComplete }

func (c apiAnswerChunk) convert() playground.AnswerChunk {
	var sources []playground.Source
	for _, s := range c.Sources {
		sources = append(sources, playground.Source{
			ID:      s.ID,
			Title:   s.Title,
			URI:     s.URL,
			Snippet: s.Snippet,
			Score:   s.Score,
		})
	}
	return playground.AnswerChunk{
		Content:     c.Content,
		IsComplete:  c.IsComplete,
		Sources:     sources,
		Confidence:  c.Confidence,
		Usage:       c.Usage.convert(),
		ElapsedTime: seconds(c.ElapsedTime),
	}
}

type apiVideoChunk struct {
	Content     string  `json:"content"`
	IsComplete  bool    `json:"is_complete"`
	Status      string  `json:"status"`
	Progress    float64 `json:"progress"`
	VideoURL    string  `json:"video_url"`
	ElapsedTime float64 `json:"elapsed_time"`
}

func (c apiVideoChunk) Complete() bool { return c.IsComplete }

func (c apiVideoChunk) convert() playground.VideoChunk {
	return playground.VideoChunk{
		Content:     c.Content,
		IsComplete:  c.IsComplete,
		Status:      c.Status,
		Progress:    c.Progress,
		VideoURL:    c.VideoURL,
		ElapsedTime: seconds(c.ElapsedTime),
	}
}

// Plain JSON responses.

type apiModel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type apiModelsResponse struct {
	Models []apiModel `json:"models"`
}

type apiCollection struct {
	Name          string   `json:"name"`
	DocumentCount int      `json:"document_count"`
	Tags          []string `json:"tags"`
}

type apiCollectionsResponse struct {
	Collections []apiCollection `json:"collections"`
}

type apiImage struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	B64JSON  string `json:"b64_json"`
}

type apiImageResponse struct {
	Images []apiImage `json:"images"`
}

type apiAudioResponse struct {
	Audio    string  `json:"audio"` // base64
	MimeType string  `json:"mime_type"`
	Duration float64 `json:"duration"`
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
