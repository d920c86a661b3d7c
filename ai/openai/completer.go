package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/trialmatch/ai"
	"github.com/tmc/langchaingo/llms"
)

// Completer implements ai.Completer using OpenAI-compatible completion APIs.
type Completer struct {
	client llms.Model
	logger *slog.Logger
}

// newCompleter is an internal constructor that returns the concrete type.
func newCompleter(config *ai.Config) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := newChatClient(config)
	if err != nil {
		return nil, err
	}

	return &Completer{
		client: client,
		logger: slog.Default().With("component", "openai-completer"),
	}, nil
}

// NewCompleter creates a new completer using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

// Complete generates text for prompt with zero temperature.
func (c *Completer) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	c.logger.Debug("generating completion", "prompt_length", len(prompt), "max_tokens", maxTokens)

	text, err := llms.GenerateFromSinglePrompt(ctx, c.client, prompt,
		llms.WithTemperature(0.0),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		c.logger.Error("failed to generate completion", "err", err)
		return "", err
	}
	return text, nil
}
