package mock

import (
	"context"

	"github.com/fwojciec/playground"
)

// Interface compliance checks.
var (
	_ playground.Catalog        = (*Catalog)(nil)
	_ playground.MediaGenerator = (*MediaGenerator)(nil)
)

// Catalog is a test double for playground.Catalog.
type Catalog struct {
	ModelsFn      func(ctx context.Context) ([]playground.Model, error)
	CollectionsFn func(ctx context.Context) ([]playground.Collection, error)
}

// Models delegates to ModelsFn.
func (c *Catalog) Models(ctx context.Context) ([]playground.Model, error) {
	return c.ModelsFn(ctx)
}

// Collections delegates to CollectionsFn.
func (c *Catalog) Collections(ctx context.Context) ([]playground.Collection, error) {
	return c.CollectionsFn(ctx)
}

// MediaGenerator is a test double for playground.MediaGenerator.
type MediaGenerator struct {
	GenerateImageFn func(ctx context.Context, req playground.ImageRequest) ([]playground.Image, error)
	GenerateAudioFn func(ctx context.Context, req playground.AudioRequest) (playground.Audio, error)
}

// GenerateImage delegates to GenerateImageFn.
func (m *MediaGenerator) GenerateImage(ctx context.Context, req playground.ImageRequest) ([]playground.Image, error) {
	return m.GenerateImageFn(ctx, req)
}

// GenerateAudio delegates to GenerateAudioFn.
func (m *MediaGenerator) GenerateAudio(ctx context.Context, req playground.AudioRequest) (playground.Audio, error) {
	return m.GenerateAudioFn(ctx, req)
}
