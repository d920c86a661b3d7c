package hfinference

import (
	"context"
	"log/slog"

	"github.com/poiesic/trialmatch/ai"
)

// Embedder implements ai.Embedder using the feature-extraction pipeline.
type Embedder struct {
	client *client
	logger *slog.Logger
}

func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Embedder{
		client: newClient(config.EmbeddingHost, config.EmbeddingModel, "feature-extraction", config.APIKey),
		logger: slog.Default().With("component", "hf-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a pooled embedding for a single text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding for single text", "length", len(text))

	var features any
	if err := e.client.post(ctx, map[string]any{"inputs": text}, &features); err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}
	return ai.MeanPool(features)
}

// EmbedTexts embeds each text in turn. Pooling is per text, so
// requests are not batched.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := e.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}
