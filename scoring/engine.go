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


package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/trialmatch/ai"
	"github.com/poiesic/trialmatch/core"
)

const (
	// ExclusionThreshold is the similarity above which an exclusion disqualifies.
	ExclusionThreshold = 0.75
	// InclusionThreshold is the similarity above which an inclusion earns points.
	InclusionThreshold = 0.6
	// PointsPerInclusion is the weight of each inclusion statement.
	PointsPerInclusion = 20.0
)

// Engine scores patient summaries against parsed criteria.
// Engine is safe for concurrent use if its Embedder is.
type Engine struct {
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a scoring engine backed by embedder.
func NewEngine(embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	e := &Engine{
		embedder: embedder,
		logger:   slog.Default().With("component", "scoring"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Score returns a match score in [0, 100] for patientText against criteria.
//
// An empty patient text or empty inclusion list scores 0. The first exclusion
// statement whose similarity exceeds ExclusionThreshold ends scoring with 0.
// Embedding failures are returned wrapped in core.ErrExternalService.
func (e *Engine) Score(ctx context.Context, patientText string, criteria core.ParsedCriteria) (float64, error) {
	if patientText == "" {
		return 0, nil
	}

	patientVec, err := e.embed(ctx, patientText)
	if err != nil {
		return 0, err
	}

	for _, statement := range criteria.Exclusion {
		sim, err := e.similarity(ctx, patientVec, statement)
		if err != nil {
			return 0, err
		}
		if sim > ExclusionThreshold {
			e.logger.Debug("exclusion triggered", "statement", statement, "similarity", sim)
			return 0, nil
		}
	}

	if len(criteria.Inclusion) == 0 {
		return 0, nil
	}

	maxPoints := PointsPerInclusion * float64(len(criteria.Inclusion))
	earned := 0.0
	for _, statement := range criteria.Inclusion {
		sim, err := e.similarity(ctx, patientVec, statement)
		if err != nil {
			return 0, err
		}
		if sim > InclusionThreshold {
			earned += PointsPerInclusion
		}
	}

	return earned / maxPoints * 100, nil
}

func (e *Engine) similarity(ctx context.Context, patientVec []float32, statement string) (float64, error) {
	vec, err := e.embed(ctx, statement)
	if err != nil {
		return 0, err
	}
	sim, err := CosineSimilarity(patientVec, vec)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", core.ErrExternalService, err)
	}
	return sim, nil
}

func (e *Engine) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding: %w", core.ErrExternalService, err)
	}
	return vec, nil
}
