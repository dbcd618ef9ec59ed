package backend

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/fwojciec/playground"
)

// Models lists the models offered by the backend.
func (c *Client) Models(ctx context.Context) ([]playground.Model, error) {
	var resp apiModelsResponse
	if err := c.call(ctx, http.MethodGet, modelsPath, c.timeouts.Metadata, nil, &resp); err != nil {
		return nil, err
	}
	models := make([]playground.Model, len(resp.Models))
	for i, m := range resp.Models {
		models[i] = playground.Model{
			ID:          m.ID,
			Name:        m.Name,
			Kind:        m.Type,
			Description: m.Description,
		}
	}
	return models, nil
}

// Collections lists the document collections available to Query.
func (c *Client) Collections(ctx context.Context) ([]playground.Collection, error) {
	var resp apiCollectionsResponse
	if err := c.call(ctx, http.MethodGet, collectionsPath, c.timeouts.Metadata, nil, &resp); err != nil {
		return nil, err
	}
	collections := make([]playground.Collection, len(resp.Collections))
	for i, col := range resp.Collections {
		collections[i] = playground.Collection{
			Name:      col.Name,
			Documents: col.DocumentCount,
			Tags:      col.Tags,
		}
	}
	return collections, nil
}

// GenerateImage requests images from POST /api/image.
func (c *Client) GenerateImage(ctx context.Context, req playground.ImageRequest) ([]playground.Image, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	body := apiImageRequest{
		Prompt:    req.Prompt,
		Size:      req.Size,
		N:         req.Count,
		apiParams: convertParams(req.Params),
	}
	var resp apiImageResponse
	if err := c.call(ctx, http.MethodPost, imagePath, c.timeouts.Media, body, &resp); err != nil {
		return nil, err
	}
	images := make([]playground.Image, 0, len(resp.Images))
	for i, img := range resp.Images {
		out := playground.Image{URL: img.URL, MimeType: img.MimeType}
		if img.B64JSON != "" {
			data, err := base64.StdEncoding.DecodeString(img.B64JSON)
			if err != nil {
				return nil, fmt.Errorf("backend: image %d: %w", i, err)
			}
			out.Data = data
		}
		images = append(images, out)
	}
	return images, nil
}

// GenerateAudio requests synthesized speech from POST /api/audio.
func (c *Client) GenerateAudio(ctx context.Context, req playground.AudioRequest) (playground.Audio, error) {
	if err := req.Validate(); err != nil {
		return playground.Audio{}, fmt.Errorf("backend: %w", err)
	}
	body := apiAudioRequest{
		Text:      req.Text,
		Voice:     req.Voice,
		Format:    req.Format,
		apiParams: convertParams(req.Params),
	}
	var resp apiAudioResponse
	if err := c.call(ctx, http.MethodPost, audioPath, c.timeouts.Media, body, &resp); err != nil {
		return playground.Audio{}, err
	}
	data, err := base64.StdEncoding.DecodeString(resp.Audio)
	if err != nil {
		return playground.Audio{}, fmt.Errorf("backend: audio: %w", err)
	}
	return playground.Audio{MimeType: resp.MimeType, Data: data, Duration: resp.Duration}, nil
}
