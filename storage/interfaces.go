package storage

import (
	"context"

	"github.com/poiesic/trialmatch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases repository resources. It does not close the backend.
	Close() error
}

// PatientRepository provides operations for managing patient records.
type PatientRepository interface {
	Repository
	// SavePatient inserts or replaces a patient record keyed by PatientID.
	// Sets CreatedAt if not already set. Records are validated before writing.
	SavePatient(ctx context.Context, record *core.PatientRecord) (*core.PatientRecord, error)

	// GetPatient retrieves a patient by id.
	// Returns ErrNotFound if the patient doesn't exist.
	GetPatient(ctx context.Context, patientID string) (*core.PatientRecord, error)

	// ListPatients returns up to limit patients, newest CreatedAt first.
	ListPatients(ctx context.Context, limit int) ([]*core.PatientRecord, error)
}

// TrialRepository provides operations for the admin-uploaded trial store.
type TrialRepository interface {
	Repository
	// UpsertTrials inserts or replaces trials keyed by NCTID.
	// Returns the number of trials written.
	UpsertTrials(ctx context.Context, trials ...*core.Trial) (int, error)

	// GetTrial retrieves a trial by NCT id.
	// Returns ErrNotFound if the trial doesn't exist.
	GetTrial(ctx context.Context, nctID string) (*core.Trial, error)

	// CountTrials returns the number of stored trials.
	CountTrials(ctx context.Context) (int, error)

	// ListTrials returns up to limit trials in key order. A limit <= 0 returns all trials.
	ListTrials(ctx context.Context, limit int) ([]*core.Trial, error)
}

// MatchRepository provides the append-only match log.
type MatchRepository interface {
	Repository
	// AddMatchRecord appends a match record, assigning a new ID from a sequence.
	// Sets CreatedAt if not already set.
	AddMatchRecord(ctx context.Context, record *core.MatchRecord) (*core.MatchRecord, error)

	// LatestMatchRecord returns the record with the greatest CreatedAt for a patient.
	// Returns ErrNotFound if the patient has no records.
	LatestMatchRecord(ctx context.Context, patientID string) (*core.MatchRecord, error)

	// GetMatchRecords returns up to limit records for a patient, newest first.
	// A limit <= 0 returns all records.
	GetMatchRecords(ctx context.Context, patientID string, limit int) ([]*core.MatchRecord, error)
}
