package ingestion

import "errors"

var (
	// ErrPatientRepositoryRequired is returned when a patient repository is not provided.
	ErrPatientRepositoryRequired = errors.New("patient repository required")

	// ErrTrialRepositoryRequired is returned when a trial repository is not provided.
	ErrTrialRepositoryRequired = errors.New("trial repository required")

	// ErrExtractorRequired is returned when an entity extractor is not provided.
	ErrExtractorRequired = errors.New("entity extractor required")

	// ErrInvalidBundle is returned for input that is not a FHIR bundle with entries.
	ErrInvalidBundle = errors.New("invalid patient bundle")
)
