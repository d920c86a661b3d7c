// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package criteria

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/trialmatch/ai"
	"github.com/poiesic/trialmatch/core"
)

// MaxInputChars bounds the eligibility text submitted to the completer.
const MaxInputChars = 8000

const promptTemplate = `[INST]Read the following eligibility criteria. Extract key inclusion/exclusion criteria as a JSON object with keys "inclusion" and "exclusion". Do not add explanation. Criteria: "%s"[/INST]`

// Parser extracts ParsedCriteria from raw eligibility text.
// A Parser is safe for concurrent use if its Completer is.
type Parser struct {
	completer ai.Completer
	maxTokens int
	logger    *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxTokens sets the completion length limit. Values < 1 are ignored.
// Default is ai.DefaultMaxNewTokens.
func WithMaxTokens(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser creates a Parser backed by completer.
func NewParser(completer ai.Completer, opts ...Option) (*Parser, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	p := &Parser{
		completer: completer,
		maxTokens: ai.DefaultMaxNewTokens,
		logger:    slog.Default().With("component", "criteria-parser"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Parse converts raw eligibility text into inclusion and exclusion statements.
//
// Unparseable output yields empty criteria and a nil error. A failed or timed
// out completion call is returned wrapped in core.ErrExternalService.
func (p *Parser) Parse(ctx context.Context, raw string) (core.ParsedCriteria, error) {
	prompt := BuildPrompt(raw)

	text, err := p.completer.Complete(ctx, prompt, p.maxTokens)
	if err != nil {
		p.logger.Error("criteria completion failed", "err", err)
		return core.ParsedCriteria{}, fmt.Errorf("%w: completion: %w", core.ErrExternalService, err)
	}

	parsed, ok := ExtractCriteria(text)
	if !ok {
		p.logger.Warn("criteria response had no usable JSON object", "response_len", len(text))
	}
	return parsed, nil
}

// BuildPrompt renders the extraction prompt for raw, truncated to MaxInputChars runes.
func BuildPrompt(raw string) string {
	return fmt.Sprintf(promptTemplate, truncate(raw, MaxInputChars))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
