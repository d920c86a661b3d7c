package ingestion

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/trialmatch/ai"
	"github.com/poiesic/trialmatch/core"
)

// BuildProfile derives a PatientProfile from bundle.
//
// Each Condition contributes its code text and the sentence
// "Patient has a condition of X." Each MedicationRequest contributes its
// medication text and "Patient is prescribed X." Resources without text
// are ignored. Entities are extracted from the joined summary only when it is
// non-empty, and are stored sorted without duplicates.
func BuildProfile(ctx context.Context, bundle *Bundle, extractor ai.EntityExtractor) (*core.PatientProfile, error) {
	if bundle == nil || bundle.Entry == nil {
		return nil, ErrInvalidBundle
	}

	profile := &core.PatientProfile{
		Conditions:  []string{},
		Medications: []string{},
		NEREntities: []string{},
	}
	var narrative []string
	for _, entry := range *bundle.Entry {
		res := entry.Resource
		switch res.ResourceType {
		case "Condition":
			if name := conceptText(res.Code); name != "" {
				profile.Conditions = append(profile.Conditions, name)
				narrative = append(narrative, fmt.Sprintf("Patient has a condition of %s.", name))
			}
		case "MedicationRequest":
			if name := conceptText(res.MedicationCodeableConcept); name != "" {
				profile.Medications = append(profile.Medications, name)
				narrative = append(narrative, fmt.Sprintf("Patient is prescribed %s.", name))
			}
		}
	}
	profile.TextSummary = strings.Join(narrative, " ")

	if profile.TextSummary == "" {
		return profile, nil
	}

	entities, err := extractor.ExtractEntities(ctx, profile.TextSummary)
	if err != nil {
		return nil, fmt.Errorf("%w: entity extraction: %w", core.ErrExternalService, err)
	}
	profile.NEREntities = entitySet(entities)
	return profile, nil
}

func conceptText(c *CodeableConcept) string {
	if c == nil {
		return ""
	}
	return c.Text
}

// entitySet returns the distinct non-blank entities in sorted order.
func entitySet(entities []string) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
