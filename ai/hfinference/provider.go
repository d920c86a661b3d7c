package hfinference

import (
	"log/slog"

	"github.com/poiesic/trialmatch/ai"
)

// Provider implements ai.AIProvider on the Hugging Face Inference API.
type Provider struct {
	embedder  *Embedder
	completer *Completer
	extractor *EntityExtractor
	logger    *slog.Logger
}

// NewProvider creates a provider for the huggingface backend.
//
// Returns ai.AIProvider interface to enforce abstraction.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}
	completer, err := newCompleter(config)
	if err != nil {
		return nil, err
	}
	extractor, err := newEntityExtractor(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		embedder:  embedder,
		completer: completer,
		extractor: extractor,
		logger:    slog.Default().With("component", "hf-provider"),
	}, nil
}

// Embedder returns the feature-extraction service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Completer returns the text-generation service.
func (p *Provider) Completer() ai.Completer {
	return p.completer
}

// EntityExtractor returns the token-classification service.
func (p *Provider) EntityExtractor() ai.EntityExtractor {
	return p.extractor
}

// Close releases idle HTTP connections.
func (p *Provider) Close() error {
	p.logger.Debug("closing Hugging Face provider")
	p.embedder.client.http.CloseIdleConnections()
	p.completer.client.http.CloseIdleConnections()
	p.extractor.client.http.CloseIdleConnections()
	return nil
}
