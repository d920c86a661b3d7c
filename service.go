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


package trialmatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/trialmatch/ai"
	"github.com/poiesic/trialmatch/ai/gemini"
	"github.com/poiesic/trialmatch/ai/hfinference"
	"github.com/poiesic/trialmatch/ai/openai"
	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/criteria"
	"github.com/poiesic/trialmatch/ingestion"
	"github.com/poiesic/trialmatch/matching"
	"github.com/poiesic/trialmatch/scoring"
	"github.com/poiesic/trialmatch/storage/badger"
	"github.com/poiesic/trialmatch/trials"
)

// Service wires storage, AI services and the matching pipeline together.
// It is constructed once at process start and shared by all callers.
type Service struct {
	repos        *badger.Repositories
	provider     ai.AIProvider
	cache        *scoring.CachedEmbedder
	orchestrator *matching.Orchestrator
	pipeline     *ingestion.Pipeline
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	datasetDir string
	numTrials  int
	poolSize   int
	cacheBytes int64
	inMemory   bool
	progress   io.Writer
	logger     *slog.Logger
}

// WithAIConfig sets the configuration used to build the AI provider.
func WithAIConfig(config *ai.Config) Option {
	return func(o *serviceOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The Service takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithDatasetDir sets the bulk trial dataset directory.
func WithDatasetDir(dir string) Option {
	return func(o *serviceOptions) {
		o.datasetDir = dir
	}
}

// WithNumRandomTrials sets the default trial count for random-mode runs.
func WithNumRandomTrials(n int) Option {
	return func(o *serviceOptions) {
		o.numTrials = n
	}
}

// WithPoolSize sets the worker pool size for batch matching and bulk ingestion.
func WithPoolSize(size int) Option {
	return func(o *serviceOptions) {
		o.poolSize = size
	}
}

// WithEmbeddingCache memoizes embeddings across runs, holding up to maxBytes
// of vectors. Pass 0 for the default capacity.
func WithEmbeddingCache(maxBytes int64) Option {
	return func(o *serviceOptions) {
		if maxBytes < 1 {
			maxBytes = scoring.DefaultCacheBytes
		}
		o.cacheBytes = maxBytes
	}
}

// WithInMemory keeps all data in memory. The path argument is ignored.
func WithInMemory() Option {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// WithProgress reports batch matching progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *serviceOptions) {
		o.progress = w
	}
}

// WithLogger sets the logger shared by all components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewProvider builds the AI provider selected by config.Backend.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	config.Normalize()
	switch config.Backend {
	case ai.BackendOpenAI:
		return openai.NewProvider(config)
	case ai.BackendHuggingFace:
		return hfinference.NewProvider(config)
	case ai.BackendGemini:
		return gemini.NewProvider(ctx, config)
	default:
		return nil, fmt.Errorf("ai config: unknown backend %q", config.Backend)
	}
}

// NewService opens the database at path and assembles the matching pipeline.
func NewService(ctx context.Context, path string, opts ...Option) (*Service, error) {
	options := &serviceOptions{
		aiConfig:   ai.DefaultConfig(),
		datasetDir: trials.DefaultDatasetDir,
		numTrials:  matching.DefaultNumTrials,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = NewProvider(ctx, options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	repos, err := badger.OpenRepositories(path, options.inMemory)
	if err != nil {
		provider.Close()
		return nil, err
	}

	s := &Service{
		repos:    repos,
		provider: provider,
		logger:   logger.With("component", "service"),
	}
	if err := s.build(options); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Service) build(options *serviceOptions) error {
	logger := options.logger

	embedder := s.provider.Embedder()
	if options.cacheBytes > 0 {
		cache, err := scoring.NewCachedEmbedder(embedder, options.cacheBytes)
		if err != nil {
			return err
		}
		s.cache = cache
		embedder = cache
	}

	selector, err := trials.NewSelector(s.repos.Trials,
		trials.WithDatasetDir(options.datasetDir),
		trials.WithLogger(logger.With("component", "trial-selector")))
	if err != nil {
		return err
	}

	maxTokens := ai.DefaultMaxNewTokens
	if options.aiConfig != nil && options.aiConfig.MaxNewTokens > 0 {
		maxTokens = options.aiConfig.MaxNewTokens
	}
	parser, err := criteria.NewParser(s.provider.Completer(),
		criteria.WithMaxTokens(maxTokens),
		criteria.WithLogger(logger.With("component", "criteria-parser")))
	if err != nil {
		return err
	}

	engine, err := scoring.NewEngine(embedder,
		scoring.WithLogger(logger.With("component", "scoring")))
	if err != nil {
		return err
	}

	matchOpts := []matching.Option{
		matching.WithDefaultNumTrials(options.numTrials),
		matching.WithLogger(logger.With("component", "matching")),
		matching.WithProgress(options.progress),
	}
	ingestOpts := []ingestion.Option{
		ingestion.WithLogger(logger.With("component", "ingestion")),
	}
	if options.poolSize > 0 {
		matchOpts = append(matchOpts, matching.WithPoolSize(options.poolSize))
		ingestOpts = append(ingestOpts, ingestion.WithPoolSize(options.poolSize))
	}

	s.orchestrator, err = matching.NewOrchestrator(s.repos.Patients, s.repos.Matches, selector, parser, engine, matchOpts...)
	if err != nil {
		return err
	}
	s.pipeline, err = ingestion.NewPipeline(s.repos.Patients, s.repos.Trials, s.provider.EntityExtractor(), ingestOpts...)
	return err
}

// Close releases worker pools, the AI provider and the database.
func (s *Service) Close() error {
	if s.pipeline != nil {
		s.pipeline.Release()
	}
	if s.orchestrator != nil {
		s.orchestrator.Release()
	}
	if s.cache != nil {
		s.cache.Close()
	}

	// Close AI provider first
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.repos.Close(); err != nil {
		s.logger.Error("error closing repositories", "err", err)
		return err
	}
	return nil
}

// Repositories returns the underlying stores.
func (s *Service) Repositories() *badger.Repositories {
	return s.repos
}

// Orchestrator returns the match orchestrator.
func (s *Service) Orchestrator() *matching.Orchestrator {
	return s.orchestrator
}

// Ingestion returns the ingestion pipeline.
func (s *Service) Ingestion() *ingestion.Pipeline {
	return s.pipeline
}

// RunMatching runs one matching pass for a patient. See matching.Orchestrator.RunMatching.
func (s *Service) RunMatching(ctx context.Context, patientID string, mode core.MatchMode, numTrials int) (*core.MatchRecord, error) {
	return s.orchestrator.RunMatching(ctx, patientID, mode, numTrials)
}

// RunBatch matches several patients. See matching.Orchestrator.RunBatch.
func (s *Service) RunBatch(ctx context.Context, patientIDs []string, mode core.MatchMode, numTrials int) []matching.BatchResult {
	return s.orchestrator.RunBatch(ctx, patientIDs, mode, numTrials)
}

// LatestMatches returns the newest match record for a patient, or nil if none exists.
func (s *Service) LatestMatches(ctx context.Context, patientID string) (*core.MatchRecord, error) {
	return s.orchestrator.LatestMatches(ctx, patientID)
}

// IngestPatient builds and stores a patient from a FHIR bundle.
func (s *Service) IngestPatient(ctx context.Context, patientID string, bundleJSON []byte) (*core.PatientRecord, error) {
	return s.pipeline.IngestPatient(ctx, patientID, bundleJSON)
}

// UploadTrials stores the complete trials among items and returns how many were written.
func (s *Service) UploadTrials(ctx context.Context, items []ingestion.TrialUpload) (int, error) {
	return s.pipeline.UploadTrials(ctx, items)
}

// GetPatient returns a stored patient.
func (s *Service) GetPatient(ctx context.Context, patientID string) (*core.PatientRecord, error) {
	return s.repos.Patients.GetPatient(ctx, patientID)
}

// ListPatients returns up to limit patients, newest first.
func (s *Service) ListPatients(ctx context.Context, limit int) ([]*core.PatientRecord, error) {
	return s.repos.Patients.ListPatients(ctx, limit)
}

// PatientDetail returns a patient and its latest match record (nil when never matched).
func (s *Service) PatientDetail(ctx context.Context, patientID string) (*core.PatientRecord, *core.MatchRecord, error) {
	record, err := s.repos.Patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}
	latest, err := s.orchestrator.LatestMatches(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}
	return record, latest, nil
}
