package hfinference

import (
	"context"
	"log/slog"

	"github.com/poiesic/trialmatch/ai"
)

// Completer implements ai.Completer using the text-generation pipeline.
type Completer struct {
	client *client
	logger *slog.Logger
}

type generationParameters struct {
	MaxNewTokens   int  `json:"max_new_tokens"`
	DoSample       bool `json:"do_sample"`
	ReturnFullText bool `json:"return_full_text"`
}

type generationRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters generationParameters `json:"parameters"`
}

type generationResult struct {
	GeneratedText string `json:"generated_text"`
}

func newCompleter(config *ai.Config) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Completer{
		client: newClient(config.CompletionHost, config.CompletionModel, "", config.APIKey),
		logger: slog.Default().With("component", "hf-completer"),
	}, nil
}

// NewCompleter creates a new completer using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

// Complete runs greedy generation and returns only the new text.
func (c *Completer) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	c.logger.Debug("generating completion", "prompt_length", len(prompt), "max_tokens", maxTokens)

	req := generationRequest{
		Inputs: prompt,
		Parameters: generationParameters{
			MaxNewTokens:   maxTokens,
			DoSample:       false,
			ReturnFullText: false,
		},
	}

	var results []generationResult
	if err := c.client.post(ctx, req, &results); err != nil {
		c.logger.Error("failed to generate completion", "err", err)
		return "", err
	}
	if len(results) == 0 {
		return "", ErrEmptyResponse
	}
	return results[0].GeneratedText, nil
}
