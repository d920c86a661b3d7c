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


package matching

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/storage"
)

// DefaultNumTrials is the random-mode trial count used when a run does not specify one.
const DefaultNumTrials = 5

// Orchestrator sequences trial selection, criteria parsing, scoring and persistence.
type Orchestrator struct {
	patients  storage.PatientRepository
	matches   storage.MatchRepository
	selector  TrialSelector
	parser    CriteriaParser
	scorer    Scorer
	numTrials int
	pool      *ants.Pool
	progress  io.Writer
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithDefaultNumTrials sets the trial count used when a run passes 0.
// Default is DefaultNumTrials.
func WithDefaultNumTrials(n int) Option {
	return func(o *Orchestrator) error {
		if n < 1 {
			return fmt.Errorf("%w: default must be at least 1, got %d", ErrInvalidNumTrials, n)
		}
		o.numTrials = n
		return nil
	}
}

// WithPoolSize sets the number of patients matched concurrently by RunBatch.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if o.pool != nil {
			o.pool.Release()
		}
		o.pool = pool
		return nil
	}
}

// WithProgress reports batch progress to w (typically os.Stderr).
func WithProgress(w io.Writer) Option {
	return func(o *Orchestrator) error {
		o.progress = w
		return nil
	}
}

// WithClock sets the time source used to stamp match records.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) error {
		if now != nil {
			o.now = now
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a match orchestrator.
// Call Release when done to stop the batch worker pool.
func NewOrchestrator(
	patients storage.PatientRepository,
	matches storage.MatchRepository,
	selector TrialSelector,
	parser CriteriaParser,
	scorer Scorer,
	opts ...Option,
) (*Orchestrator, error) {
	switch {
	case patients == nil:
		return nil, ErrPatientRepositoryRequired
	case matches == nil:
		return nil, ErrMatchRepositoryRequired
	case selector == nil:
		return nil, ErrSelectorRequired
	case parser == nil:
		return nil, ErrParserRequired
	case scorer == nil:
		return nil, ErrScorerRequired
	}

	o := &Orchestrator{
		patients:  patients,
		matches:   matches,
		selector:  selector,
		parser:    parser,
		scorer:    scorer,
		numTrials: DefaultNumTrials,
		now:       time.Now,
		logger:    slog.Default().With("component", "matching"),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			o.Release()
			return nil, err
		}
	}

	if o.pool == nil {
		size := runtime.NumCPU() / 2
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return nil, err
		}
		o.pool = pool
	}

	return o, nil
}

// parsedTrial is one entry of a run's criteria cache.
type parsedTrial struct {
	trial    *core.Trial
	criteria core.ParsedCriteria
}

// RunMatching matches one patient against the trials selected for mode and
// appends the result to the match log.
//
// A numTrials of 0 selects the configured default. Errors wrap
// core.ErrPatientNotFound, core.ErrNoTrialsAvailable or
// core.ErrExternalService. A run where no trial scores above zero succeeds
// with an empty Trials list.
func (o *Orchestrator) RunMatching(ctx context.Context, patientID string, mode core.MatchMode, numTrials int) (*core.MatchRecord, error) {
	if err := core.ValidateMatchMode(mode); err != nil {
		return nil, err
	}
	if numTrials < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidNumTrials, numTrials)
	}
	if numTrials == 0 {
		numTrials = o.numTrials
	}

	profile, err := o.profile(ctx, patientID)
	if err != nil {
		return nil, err
	}

	selected, err := o.selector.Select(ctx, mode, numTrials)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: selector returned no trials", core.ErrNoTrialsAvailable)
	}

	cache, err := o.parseCriteria(ctx, selected)
	if err != nil {
		return nil, err
	}

	results := make([]core.MatchResult, 0, len(cache))
	for _, entry := range cache {
		if !entry.criteria.IsScoreable() {
			continue
		}
		score, err := o.scorer.Score(ctx, profile.TextSummary, entry.criteria)
		if err != nil {
			o.logger.Error("scoring failed", "patient_id", patientID, "nct_id", entry.trial.NCTID, "err", err)
			return nil, err
		}
		if score <= 0 {
			continue
		}
		results = append(results, core.MatchResult{
			NCTID: entry.trial.NCTID,
			Title: entry.trial.BriefTitle,
			Score: math.Round(score*100) / 100,
		})
	}

	slices.SortStableFunc(results, func(a, b core.MatchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	record := &core.MatchRecord{
		PatientID: patientID,
		Mode:      mode,
		CreatedAt: o.now().UTC(),
		Trials:    results,
	}
	saved, err := o.matches.AddMatchRecord(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("saving match record: %w", err)
	}

	o.logger.Info("matching run complete",
		"patient_id", patientID,
		"mode", mode,
		"candidates", len(cache),
		"matched", len(results))
	return saved, nil
}

// LatestMatches returns the most recent match record for a patient,
// or nil if the patient has never been matched.
func (o *Orchestrator) LatestMatches(ctx context.Context, patientID string) (*core.MatchRecord, error) {
	record, err := o.matches.LatestMatchRecord(ctx, patientID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Release stops the batch worker pool.
// The orchestrator should not be used after calling Release.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}

func (o *Orchestrator) profile(ctx context.Context, patientID string) (*core.PatientProfile, error) {
	record, err := o.patients.GetPatient(ctx, patientID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", core.ErrPatientNotFound, patientID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading patient %q: %w", patientID, err)
	}
	if record.Profile == nil {
		return nil, fmt.Errorf("%w: %q has no profile", core.ErrPatientNotFound, patientID)
	}
	return record.Profile, nil
}

// parseCriteria parses each distinct trial id once, keeping the first row
// seen for an id and the order of first appearance.
func (o *Orchestrator) parseCriteria(ctx context.Context, selected []*core.Trial) ([]parsedTrial, error) {
	seen := make(map[string]struct{}, len(selected))
	cache := make([]parsedTrial, 0, len(selected))
	for _, trial := range selected {
		if _, ok := seen[trial.NCTID]; ok {
			continue
		}
		seen[trial.NCTID] = struct{}{}

		criteria, err := o.parser.Parse(ctx, trial.Criteria)
		if err != nil {
			return nil, err
		}
		if !criteria.IsScoreable() {
			o.logger.Warn("trial has no inclusion criteria, skipping", "nct_id", trial.NCTID)
		}
		cache = append(cache, parsedTrial{trial: trial, criteria: criteria})
	}
	return cache, nil
}
