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


package trials

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/storage"
)

// DemoTrialIDs are the trials used by demo mode when nothing has been uploaded.
var DemoTrialIDs = []string{"NCT05943132", "NCT06241142"}

// ActiveStatuses are the overall statuses eligible for random selection.
var ActiveStatuses = []string{
	"RECRUITING",
	"ACTIVE_NOT_RECRUITING",
	"ENROLLING_BY_INVITATION",
	"NOT_YET_RECRUITING",
}

// DefaultDatasetDir is the default bulk dataset location.
const DefaultDatasetDir = "./aact_data"

// Selector chooses the candidate trial set for a matching run.
// Selector is safe for concurrent use.
type Selector struct {
	repo    storage.TrialRepository
	dataset *Dataset
	logger  *slog.Logger

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// Option configures a Selector.
type Option func(*Selector)

// WithDatasetDir sets the directory holding the bulk dataset tables.
// Default is DefaultDatasetDir.
func WithDatasetDir(dir string) Option {
	return func(s *Selector) {
		s.dataset = NewDataset(dir)
	}
}

// WithDataset sets the bulk dataset.
func WithDataset(dataset *Dataset) Option {
	return func(s *Selector) {
		if dataset != nil {
			s.dataset = dataset
		}
	}
}

// WithRand sets the random source used for sampling.
func WithRand(rng *rand.Rand) Option {
	return func(s *Selector) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSelector creates a Selector reading uploaded trials from repo.
func NewSelector(repo storage.TrialRepository, opts ...Option) (*Selector, error) {
	if repo == nil {
		return nil, ErrTrialRepositoryRequired
	}
	s := &Selector{
		repo:    repo,
		dataset: NewDataset(DefaultDatasetDir),
		logger:  slog.Default().With("component", "trial-selector"),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Select returns the trials to score for mode.
//
// Uploaded trials win when any exist: demo mode returns all of them and
// random mode returns up to numTrials in store order. Otherwise the bulk
// dataset is used. The result may contain several rows for one trial id.
// Returns core.ErrNoTrialsAvailable when no source yields a trial.
func (s *Selector) Select(ctx context.Context, mode core.MatchMode, numTrials int) ([]*core.Trial, error) {
	if err := core.ValidateMatchMode(mode); err != nil {
		return nil, err
	}
	if mode == core.MatchModeRandom && numTrials < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTrialCount, numTrials)
	}

	limit := 0
	if mode == core.MatchModeRandom {
		limit = numTrials
	}
	stored, err := s.repo.ListTrials(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing uploaded trials: %w", err)
	}
	if len(stored) > 0 {
		s.logger.Debug("using uploaded trials", "mode", mode, "count", len(stored))
		return stored, nil
	}

	var selected []*core.Trial
	switch mode {
	case core.MatchModeDemo:
		selected, err = s.selectDemo()
	default:
		selected, err = s.selectRandom(numTrials)
	}
	if err != nil {
		s.logger.Warn("bulk dataset unavailable", "dir", s.dataset.Dir(), "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrNoTrialsAvailable, err)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no %s trials in %s", core.ErrNoTrialsAvailable, mode, s.dataset.Dir())
	}

	s.logger.Debug("using bulk dataset trials", "mode", mode, "count", len(selected))
	return selected, nil
}

func (s *Selector) selectDemo() ([]*core.Trial, error) {
	studies, eligibilities, err := s.loadTables()
	if err != nil {
		return nil, err
	}

	isTarget := func(id string) bool { return slices.Contains(DemoTrialIDs, id) }
	studies = slices.DeleteFunc(studies, func(st Study) bool { return !isTarget(st.NCTID) })
	eligibilities = slices.DeleteFunc(eligibilities, func(e Eligibility) bool { return !isTarget(e.NCTID) })
	if len(studies) == 0 || len(eligibilities) == 0 {
		return nil, nil
	}

	return join(studies, eligibilities), nil
}

func (s *Selector) selectRandom(numTrials int) ([]*core.Trial, error) {
	studies, eligibilities, err := s.loadTables()
	if err != nil {
		return nil, err
	}

	active := slices.DeleteFunc(studies, func(st Study) bool {
		return !slices.Contains(ActiveStatuses, st.OverallStatus)
	})
	if len(active) == 0 {
		return nil, nil
	}

	sample := active
	if len(active) > numTrials {
		sample = make([]Study, numTrials)
		for i, idx := range s.perm(len(active))[:numTrials] {
			sample[i] = active[idx]
		}
	}

	return join(sample, eligibilities), nil
}

func (s *Selector) loadTables() ([]Study, []Eligibility, error) {
	studies, err := s.dataset.Studies()
	if err != nil {
		return nil, nil, err
	}
	eligibilities, err := s.dataset.Eligibilities()
	if err != nil {
		return nil, nil, err
	}
	return studies, eligibilities, nil
}

func (s *Selector) perm(n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Perm(n)
}
