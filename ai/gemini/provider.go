package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/trialmatch/ai"
	"google.golang.org/genai"
)

const maxExtractAttempts = 3

var (
	// ErrEmptyResponse indicates the API returned no text or no embedding.
	ErrEmptyResponse = errors.New("gemini api returned empty response")
)

// contentModels is the subset of genai.Models used by the provider.
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Provider implements ai.AIProvider, ai.Embedder, ai.Completer and
// ai.EntityExtractor on a single Gemini client.
type Provider struct {
	models          contentModels
	embeddingModel  string
	completionModel string
	logger          *slog.Logger
}

// NewProvider creates a provider for the Gemini API backend.
//
// Returns ai.AIProvider interface to enforce abstraction.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(config.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newProvider(client.Models, config), nil
}

func newProvider(models contentModels, config *ai.Config) *Provider {
	return &Provider{
		models:          models,
		embeddingModel:  config.EmbeddingModel,
		completionModel: config.CompletionModel,
		logger:          slog.Default().With("component", "gemini-provider"),
	}
}

// Embedder returns the provider itself.
func (p *Provider) Embedder() ai.Embedder {
	return p
}

// Completer returns the provider itself.
func (p *Provider) Completer() ai.Completer {
	return p
}

// EntityExtractor returns the provider itself.
func (p *Provider) EntityExtractor() ai.EntityExtractor {
	return p
}

// Close is a no-op; the genai client holds no resources that need releasing.
func (p *Provider) Close() error {
	return nil
}

// EmbedText generates an embedding for a single text.
func (p *Provider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedTexts generates embeddings for texts in one request.
func (p *Provider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	p.logger.Debug("generating embeddings for texts", "count", len(texts))

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{Parts: []*genai.Part{{Text: text}}})
	}

	resp, err := p.models.EmbedContent(ctx, p.embeddingModel, contents, nil)
	if err != nil {
		p.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, ErrEmptyResponse
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, ErrEmptyResponse
		}
		out[i] = e.Values
	}
	return out, nil
}

// Complete generates text for prompt with zero temperature.
func (p *Provider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     ptr(float32(0)),
		MaxOutputTokens: int32(maxTokens),
	}
	return p.generate(ctx, genai.Text(prompt), cfg)
}

// ExtractEntities asks the model for biomedical entities as JSON.
func (p *Provider) ExtractEntities(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:       ptr(float32(0)),
		ResponseMIMEType:  "application/json",
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: ai.EntityExtractionPrompt()}}},
	}

	var lastErr error
	for attempt := 0; attempt < maxExtractAttempts; attempt++ {
		output, err := p.generate(ctx, genai.Text(text), cfg)
		if err != nil {
			return nil, err
		}
		words, err := ai.ParseEntityResponse(output)
		if err != nil {
			lastErr = err
			p.logger.Warn("error parsing extractor response", "attempt", attempt+1, "err", err)
			continue
		}
		return words, nil
	}
	return nil, lastErr
}

// generate joins the text parts of every candidate.
func (p *Provider) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := p.models.GenerateContent(ctx, p.completionModel, contents, cfg)
	if err != nil {
		p.logger.Error("failed to generate content", "err", err)
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			builder.WriteString(part.Text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", ErrEmptyResponse
	}
	return output, nil
}

func ptr[T any](v T) *T {
	return &v
}
