package ingestion

import (
	"encoding/json"
	"fmt"
)

// Bundle is the subset of a FHIR bundle used to build patient profiles.
// Entry is nil when the bundle has no "entry" member.
type Bundle struct {
	ResourceType string         `json:"resourceType"`
	ID           string         `json:"id"`
	Entry        *[]BundleEntry `json:"entry"`
}

// BundleEntry wraps one resource of a bundle.
type BundleEntry struct {
	Resource Resource `json:"resource"`
}

// Resource holds the fields read from Condition and MedicationRequest resources.
type Resource struct {
	ResourceType              string           `json:"resourceType"`
	Code                      *CodeableConcept `json:"code,omitempty"`
	MedicationCodeableConcept *CodeableConcept `json:"medicationCodeableConcept,omitempty"`
}

// CodeableConcept is a coded value with its display text.
type CodeableConcept struct {
	Text string `json:"text"`
}

// ParseBundle decodes a JSON FHIR bundle.
// Returns ErrInvalidBundle if data is not a JSON object or has no "entry" member.
func ParseBundle(data []byte) (*Bundle, error) {
	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBundle, err)
	}
	if bundle.Entry == nil {
		return nil, fmt.Errorf("%w: bundle has no entries", ErrInvalidBundle)
	}
	return &bundle, nil
}
