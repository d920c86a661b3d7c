package matching

import "errors"

var (
	// ErrPatientRepositoryRequired is returned when a patient repository is not provided.
	ErrPatientRepositoryRequired = errors.New("patient repository required")

	// ErrMatchRepositoryRequired is returned when a match repository is not provided.
	ErrMatchRepositoryRequired = errors.New("match repository required")

	// ErrSelectorRequired is returned when a trial selector is not provided.
	ErrSelectorRequired = errors.New("trial selector required")

	// ErrParserRequired is returned when a criteria parser is not provided.
	ErrParserRequired = errors.New("criteria parser required")

	// ErrScorerRequired is returned when a scorer is not provided.
	ErrScorerRequired = errors.New("scorer required")

	// ErrInvalidNumTrials is returned for a negative trial count.
	ErrInvalidNumTrials = errors.New("number of trials cannot be negative")
)
