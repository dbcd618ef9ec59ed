package playground

import "context"

// The streaming interfaces share one contract: onChunk is called once per
// decoded chunk, synchronously and in arrival order; onError is called at most
// once, only for conditions that abort the whole stream, and no callback of
// either kind follows it. The call blocks until the stream has ended.

// Generator streams free-form text generation.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest, onChunk func(GenerationChunk), onError func(error))
}

// Summarizer streams summaries.
type Summarizer interface {
	Summarize(ctx context.Context, req SummarizeRequest, onChunk func(SummaryChunk), onError func(error))
}

// Answerer streams retrieval-augmented answers.
type Answerer interface {
	Query(ctx context.Context, req QueryRequest, onChunk func(AnswerChunk), onError func(error))
}

// VideoGenerator streams progress of a video generation job.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, req VideoRequest, onChunk func(VideoChunk), onError func(error))
}

// Model describes a model offered by the backend.
type Model struct {
	ID          string
	Name        string
	Kind        string // e.g. "text", "image", "audio", "video"
	Description string
}

// Collection describes a document collection available for retrieval.
type Collection struct {
	Name      string
	Documents int
	Tags      []string
}

// Catalog lists what the backend offers.
type Catalog interface {
	Models(ctx context.Context) ([]Model, error)
	Collections(ctx context.Context) ([]Collection, error)
}

// Image is a generated image, either inline or by URL.
type Image struct {
	URL      string
	MimeType string
	Data     []byte
}

// Audio is synthesized speech.
type Audio struct {
	MimeType string
	Data     []byte
	Duration float64 // seconds
}

// MediaGenerator wraps the non-streaming media endpoints.
type MediaGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) ([]Image, error)
	GenerateAudio(ctx context.Context, req AudioRequest) (Audio, error)
}
