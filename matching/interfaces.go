package matching

import (
	"context"

	"github.com/poiesic/trialmatch/core"
)

// TrialSelector chooses candidate trials. Implemented by trials.Selector.
type TrialSelector interface {
	Select(ctx context.Context, mode core.MatchMode, numTrials int) ([]*core.Trial, error)
}

// CriteriaParser structures raw eligibility text. Implemented by criteria.Parser.
type CriteriaParser interface {
	Parse(ctx context.Context, raw string) (core.ParsedCriteria, error)
}

// Scorer scores a patient summary against parsed criteria. Implemented by scoring.Engine.
type Scorer interface {
	Score(ctx context.Context, patientText string, criteria core.ParsedCriteria) (float64, error)
}
