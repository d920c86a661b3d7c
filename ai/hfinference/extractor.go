package hfinference

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/trialmatch/ai"
)

// EntityExtractor implements ai.EntityExtractor using the token-classification pipeline.
type EntityExtractor struct {
	client *client
	logger *slog.Logger
}

type classificationRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		AggregationStrategy string `json:"aggregation_strategy"`
	} `json:"parameters"`
}

type classifiedToken struct {
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
}

func newEntityExtractor(config *ai.Config) (*EntityExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &EntityExtractor{
		client: newClient(config.CompletionHost, config.NERModel, "", config.APIKey),
		logger: slog.Default().With("component", "hf-extractor"),
	}, nil
}

// NewEntityExtractor creates a new entity extractor using the provided configuration.
//
// Returns ai.EntityExtractor interface to enforce abstraction.
func NewEntityExtractor(config *ai.Config) (ai.EntityExtractor, error) {
	return newEntityExtractor(config)
}

// ExtractEntities returns the word of every aggregated entity span.
func (e *EntityExtractor) ExtractEntities(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	var req classificationRequest
	req.Inputs = text
	req.Parameters.AggregationStrategy = "simple"

	var tokens []classifiedToken
	if err := e.client.post(ctx, req, &tokens); err != nil {
		e.logger.Error("failed to classify tokens", "err", err)
		return nil, err
	}

	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if w := strings.TrimSpace(t.Word); w != "" {
			words = append(words, w)
		}
	}
	e.logger.Debug("extracted entities", "count", len(words))
	return words, nil
}
