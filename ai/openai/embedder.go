package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/trialmatch/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder over an OpenAI-compatible embeddings
// endpoint. It embeds patient summaries and criterion statements for
// cosine scoring.
//
// Input text is never logged: patient summaries carry clinical details.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
	host     string
	logger   *slog.Logger
}

func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(token(config)),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding client for %s: %w", config.EmbeddingModel, err)
	}

	// Multi-line clinical notes embed as one passage.
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("embedding client for %s: %w", config.EmbeddingModel, err)
	}

	return &Embedder{
		embedder: embedder,
		model:    config.EmbeddingModel,
		host:     config.EmbeddingHost,
		logger: slog.Default().With(
			"component", "openai-embedder",
			"model", config.EmbeddingModel,
		),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText embeds one patient summary or criterion statement.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedTexts embeds statements in one request. Every returned vector is
// non-empty, so callers can score positionally without further checks.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	e.logger.Debug("embedding statements", "count", len(texts), "chars", totalChars(texts))

	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("embedding request failed", "host", e.host, "count", len(texts), "err", err)
		return nil, fmt.Errorf("embed %d statement(s) with %s at %s: %w", len(texts), e.model, e.host, err)
	}

	for i, vec := range vecs {
		if len(vec) == 0 {
			e.logger.Warn("embedding service returned an empty vector", "index", i, "count", len(texts))
			return nil, fmt.Errorf("%w: statement %d of %d from %s", ErrEmptyEmbedding, i+1, len(texts), e.model)
		}
	}

	e.logger.Debug("embedded statements", "count", len(vecs), "dims", len(vecs[0]))
	return vecs, nil
}

func totalChars(texts []string) int {
	n := 0
	for _, t := range texts {
		n += len(t)
	}
	return n
}
