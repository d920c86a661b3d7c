package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/trialmatch/ai"
	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/storage"
)

// Pipeline ingests patient bundles and uploaded trials.
// Bulk patient ingestion runs on a worker pool because entity extraction is a remote call.
type Pipeline struct {
	patientRepository storage.PatientRepository
	trialRepository   storage.TrialRepository
	extractor         ai.EntityExtractor
	pool              *ants.Pool
	now               func() time.Time
	logger            *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent bundle ingestion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithClock sets the time source used to stamp patient records.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) error {
		if now != nil {
			p.now = now
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	patientRepository storage.PatientRepository,
	trialRepository storage.TrialRepository,
	extractor ai.EntityExtractor,
	opts ...Option,
) (*Pipeline, error) {
	if patientRepository == nil {
		return nil, ErrPatientRepositoryRequired
	}
	if trialRepository == nil {
		return nil, ErrTrialRepositoryRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	p := &Pipeline{
		patientRepository: patientRepository,
		trialRepository:   trialRepository,
		extractor:         extractor,
		now:               time.Now,
		logger:            slog.Default().With("component", "ingestion"),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	if p.pool == nil {
		poolSize := runtime.NumCPU() / 2
		if poolSize < 1 {
			poolSize = 1
		}
		pool, err := ants.NewPool(poolSize)
		if err != nil {
			return nil, err
		}
		p.pool = pool
	}

	return p, nil
}

// IngestPatient builds a profile from a FHIR bundle and upserts the patient.
//
// An empty patientID falls back to the bundle id, then to "patient-<unix seconds>".
// Re-ingesting a patient replaces its profile and refreshes CreatedAt.
func (p *Pipeline) IngestPatient(ctx context.Context, patientID string, bundleJSON []byte) (*core.PatientRecord, error) {
	bundle, err := ParseBundle(bundleJSON)
	if err != nil {
		return nil, err
	}

	now := p.now().UTC()
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		patientID = strings.TrimSpace(bundle.ID)
	}
	if patientID == "" {
		patientID = fmt.Sprintf("patient-%d", now.Unix())
	}

	profile, err := BuildProfile(ctx, bundle, p.extractor)
	if err != nil {
		p.logger.Error("error building patient profile", "patient_id", patientID, "err", err)
		return nil, err
	}

	saved, err := p.patientRepository.SavePatient(ctx, &core.PatientRecord{
		PatientID: patientID,
		CreatedAt: now,
		Profile:   profile,
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("patient ingested",
		"patient_id", patientID,
		"conditions", len(profile.Conditions),
		"medications", len(profile.Medications),
		"entities", len(profile.NEREntities))
	return saved, nil
}

// BundleInput is one bundle for IngestPatients.
type BundleInput struct {
	Source    string // file name or other label, used in logs and results
	PatientID string // optional
	Data      []byte
}

// IngestResult is the outcome of one bundle in IngestPatients.
type IngestResult struct {
	Source string
	Record *core.PatientRecord
	Err    error
}

// IngestPatients ingests bundles concurrently on the worker pool.
// Results are returned in input order; a failed bundle does not stop the others.
func (p *Pipeline) IngestPatients(ctx context.Context, inputs []BundleInput) []IngestResult {
	results := make([]IngestResult, len(inputs))

	var wg sync.WaitGroup
	for i, in := range inputs {
		results[i].Source = in.Source
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			results[i].Record, results[i].Err = p.IngestPatient(ctx, in.PatientID, in.Data)
		})
		if err != nil {
			wg.Done()
			results[i].Err = err
		}
	}
	wg.Wait()

	return results
}

// TrialUpload is one uploaded trial. Fields mirror core.Trial.
type TrialUpload struct {
	NCTID         string  `json:"nct_id"`
	BriefTitle    string  `json:"brief_title"`
	Criteria      string  `json:"criteria"`
	OverallStatus *string `json:"overall_status,omitempty"`
}

// UploadTrials upserts the complete items and returns how many were written.
// Items missing an id, title or criteria are skipped.
func (p *Pipeline) UploadTrials(ctx context.Context, items []TrialUpload) (int, error) {
	trials := make([]*core.Trial, 0, len(items))
	for _, item := range items {
		trial := &core.Trial{
			NCTID:      strings.TrimSpace(item.NCTID),
			BriefTitle: item.BriefTitle,
			Criteria:   item.Criteria,
		}
		if item.OverallStatus != nil {
			trial.OverallStatus = *item.OverallStatus
		}
		if err := core.ValidateTrial(trial); err != nil {
			p.logger.Debug("skipping incomplete trial", "nct_id", item.NCTID, "err", err)
			continue
		}
		trials = append(trials, trial)
	}

	if len(trials) == 0 {
		return 0, nil
	}

	n, err := p.trialRepository.UpsertTrials(ctx, trials...)
	if err != nil {
		return 0, err
	}
	p.logger.Info("trials uploaded", "received", len(items), "upserted", n)
	return n, nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
