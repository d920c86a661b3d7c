package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/storage"
)

// MatchRepository implements storage.MatchRepository for BadgerDB.
// Records are append-only: there is no update or delete.
type MatchRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.MatchRepository = (*MatchRepository)(nil)

// NewMatchRepository creates a new MatchRepository.
func NewMatchRepository(backend *Backend) (storage.MatchRepository, error) {
	idSeq, err := backend.GetSequence(matchRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &MatchRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *MatchRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *MatchRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddMatchRecord appends a match record with a freshly sequenced ID.
func (r *MatchRepository) AddMatchRecord(ctx context.Context, record *core.MatchRecord) (*core.MatchRecord, error) {
	if record != nil && record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if err := core.ValidateMatchRecord(record); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		record.Id = core.ID(nextID)

		if err := tx.Set(makeMatchRecordKey(record.Id), storage.MarshalMatchRecord(record)); err != nil {
			return err
		}

		indexKey := makeMatchPatientKey(record.PatientID, record.CreatedAt, record.Id)
		if err := tx.Set(indexKey, storage.MarshalID(record.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// LatestMatchRecord returns the newest record for a patient.
func (r *MatchRepository) LatestMatchRecord(ctx context.Context, patientID string) (*core.MatchRecord, error) {
	records, err := r.GetMatchRecords(ctx, patientID, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no match records for patient %s", storage.ErrNotFound, patientID)
	}
	return records[0], nil
}

// GetMatchRecords returns up to limit records for a patient, newest CreatedAt first.
func (r *MatchRepository) GetMatchRecords(ctx context.Context, patientID string, limit int) ([]*core.MatchRecord, error) {
	var results []*core.MatchRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := makePartialMatchPatientKey(patientID)
		for iter.Seek(seekLast(prefix)); iter.ValidForPrefix(prefix); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			var recordID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				recordID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			record, err := readMatchRecord(tx, recordID)
			if err != nil {
				return err
			}
			// The index is keyed by a hash of the patient id; skip collisions
			if record == nil || record.PatientID != patientID {
				continue
			}
			results = append(results, record)
		}
		return nil
	}, false)
	return results, err
}

// readMatchRecord reads a match record by ID. Returns nil without error when absent.
func readMatchRecord(tx *badger.Txn, id core.ID) (*core.MatchRecord, error) {
	item, err := tx.Get(makeMatchRecordKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.MatchRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalMatchRecord(val)
		return unmarshalErr
	})
	return record, err
}
