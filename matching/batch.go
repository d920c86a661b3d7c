package matching

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/trialmatch/core"
)

// BatchResult is the outcome of one patient in a batch run.
// Exactly one of Record and Err is set.
type BatchResult struct {
	PatientID string
	Record    *core.MatchRecord
	Err       error
}

// RunBatch runs RunMatching for each patient id concurrently on the worker
// pool. Results are returned in input order. Per-patient failures are
// captured in the corresponding BatchResult.
func (o *Orchestrator) RunBatch(ctx context.Context, patientIDs []string, mode core.MatchMode, numTrials int) []BatchResult {
	results := make([]BatchResult, len(patientIDs))

	var tracker *ProgressTracker
	if o.progress != nil {
		tracker = NewProgressTracker(o.progress, len(patientIDs), 1)
		tracker.Start()
		defer tracker.Finish()
	}

	var wg sync.WaitGroup
	for i, id := range patientIDs {
		results[i].PatientID = id
		wg.Add(1)
		err := o.pool.Submit(func() {
			defer wg.Done()
			record, err := o.RunMatching(ctx, id, mode, numTrials)
			if err != nil {
				o.logger.Warn("batch item failed", "patient_id", id, "err", err)
				results[i].Err = err
			} else {
				results[i].Record = record
			}
			if tracker != nil {
				tracker.Record(err)
			}
		})
		if err != nil {
			wg.Done()
			results[i].Err = fmt.Errorf("scheduling patient %q: %w", id, err)
			if tracker != nil {
				tracker.Record(results[i].Err)
			}
		}
	}
	wg.Wait()

	return results
}
