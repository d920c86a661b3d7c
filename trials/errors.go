package trials

import "errors"

var (
	// ErrTrialRepositoryRequired is returned when a trial repository is not provided.
	ErrTrialRepositoryRequired = errors.New("trial repository required")

	// ErrDatasetUnavailable is returned when a dataset table cannot be read.
	ErrDatasetUnavailable = errors.New("trial dataset unavailable")

	// ErrMissingColumn is returned when a dataset table lacks a required column.
	ErrMissingColumn = errors.New("dataset table missing required column")

	// ErrInvalidTrialCount is returned when a random selection asks for fewer than one trial.
	ErrInvalidTrialCount = errors.New("number of trials must be at least 1")
)
