package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/storage"
)

// PatientRepository implements storage.PatientRepository for BadgerDB.
type PatientRepository struct {
	backend *Backend
}

var _ storage.PatientRepository = (*PatientRepository)(nil)

// NewPatientRepository creates a new PatientRepository.
func NewPatientRepository(backend *Backend) (storage.PatientRepository, error) {
	return &PatientRepository{backend: backend}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *PatientRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *PatientRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SavePatient inserts or replaces a patient record.
func (r *PatientRepository) SavePatient(ctx context.Context, record *core.PatientRecord) (*core.PatientRecord, error) {
	if record != nil && record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if err := core.ValidatePatientRecord(record); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makePatientKey(record.PatientID)

		old, err := readPatient(tx, key)
		if err != nil {
			return err
		}
		// Replace the date index entry of the previous version
		if old != nil {
			if err := tx.Delete(makePatientDateKey(old.CreatedAt, old.PatientID)); err != nil {
				return err
			}
		}

		if err := tx.Set(key, storage.MarshalPatientRecord(record)); err != nil {
			return err
		}
		dateKey := makePatientDateKey(record.CreatedAt, record.PatientID)
		if err := tx.Set(dateKey, []byte(record.PatientID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetPatient retrieves a patient record by id.
func (r *PatientRepository) GetPatient(ctx context.Context, patientID string) (*core.PatientRecord, error) {
	var result *core.PatientRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		record, err := readPatient(tx, makePatientKey(patientID))
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("%w: patient %s", storage.ErrNotFound, patientID)
		}
		result = record
		return nil
	}, false)
	return result, err
}

// ListPatients retrieves up to limit patients ordered by CreatedAt descending.
func (r *PatientRepository) ListPatients(ctx context.Context, limit int) ([]*core.PatientRecord, error) {
	var results []*core.PatientRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Reverse iterator over the date index yields newest first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(patientRecordDatePrefix + ":")
		for iter.Seek(seekLast(prefix)); iter.ValidForPrefix(prefix); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			var patientID string
			if err := iter.Item().Value(func(val []byte) error {
				patientID = string(val)
				return nil
			}); err != nil {
				return err
			}

			record, err := readPatient(tx, makePatientKey(patientID))
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)
	return results, err
}

// readPatient reads a patient record from the transaction.
// Returns nil without error when the key is absent.
func readPatient(tx *badger.Txn, key []byte) (*core.PatientRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.PatientRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalPatientRecord(val)
		return unmarshalErr
	})
	return record, err
}
