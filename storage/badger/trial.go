package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/storage"
)

// TrialRepository implements storage.TrialRepository for BadgerDB.
type TrialRepository struct {
	backend *Backend
}

var _ storage.TrialRepository = (*TrialRepository)(nil)

// NewTrialRepository creates a new TrialRepository.
func NewTrialRepository(backend *Backend) (storage.TrialRepository, error) {
	return &TrialRepository{backend: backend}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *TrialRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *TrialRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertTrials inserts or replaces trials keyed by NCT id.
// All trials are validated before any is written.
func (r *TrialRepository) UpsertTrials(ctx context.Context, trials ...*core.Trial) (int, error) {
	for _, trial := range trials {
		if err := core.ValidateTrial(trial); err != nil {
			return 0, err
		}
	}
	if len(trials) == 0 {
		return 0, nil
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, trial := range trials {
			if err := tx.Set(makeTrialKey(trial.NCTID), storage.MarshalTrial(trial)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return len(trials), nil
}

// GetTrial retrieves a trial by NCT id.
func (r *TrialRepository) GetTrial(ctx context.Context, nctID string) (*core.Trial, error) {
	var result *core.Trial
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeTrialKey(nctID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: trial %s", storage.ErrNotFound, nctID)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalTrial(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// CountTrials returns the number of stored trials.
func (r *TrialRepository) CountTrials(ctx context.Context) (int, error) {
	return r.backend.countPrefix([]byte(trialRecordPrefix + ":"))
}

// ListTrials returns up to limit trials in NCT id order. A limit <= 0 returns all.
func (r *TrialRepository) ListTrials(ctx context.Context, limit int) ([]*core.Trial, error) {
	var results []*core.Trial
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(trialRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			var trial *core.Trial
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				trial, err = storage.UnmarshalTrial(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, trial)
		}
		return nil
	}, false)
	return results, err
}
