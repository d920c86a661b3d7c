package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity scoring.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Token-level feature tensors are mean-pooled to a single vector.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer generates text from a prompt.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete generates up to maxTokens new tokens for prompt.
	// Generation is deterministic (greedy / zero temperature) and the
	// prompt itself is not echoed back.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// EntityExtractor finds named biomedical entities in text.
// Implementations must be thread-safe for concurrent use.
type EntityExtractor interface {
	// ExtractEntities returns the entity words found in text, in encounter order.
	// Duplicates may be present; callers de-duplicate as needed.
	// Returns an empty slice if no entities are found.
	ExtractEntities(ctx context.Context, text string) ([]string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages the services, ensuring they share configuration
// and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Completer returns the text completion service.
	Completer() Completer

	// EntityExtractor returns the named entity recognition service.
	EntityExtractor() EntityExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
