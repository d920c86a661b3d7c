package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// MatchMode selects how candidate trials are chosen for a matching run.
type MatchMode string

const (
	// MatchModeDemo restricts selection to a fixed pair of known trials.
	MatchModeDemo MatchMode = "demo"
	// MatchModeRandom samples among currently active trials.
	MatchModeRandom MatchMode = "random"
)

// PatientProfile is the structured view of a patient used for matching.
type PatientProfile struct {
	Conditions  []string `json:"conditions"`
	Medications []string `json:"medications"`
	TextSummary string   `json:"text_summary"` // Narrative sentences joined by spaces
	NEREntities []string `json:"ner_entities"` // Sorted, de-duplicated
}

// PatientRecord is a stored patient. Profile is nil when no profile could be built.
type PatientRecord struct {
	PatientID string          `json:"patient_id"`
	CreatedAt time.Time       `json:"created_at"`
	Profile   *PatientProfile `json:"profile"`
}

// ParsedCriteria holds structured eligibility statements derived from a trial's raw criteria text.
// Both lists are empty when parsing degraded.
type ParsedCriteria struct {
	Inclusion []string `json:"inclusion"`
	Exclusion []string `json:"exclusion"`
}

// IsScoreable reports whether the criteria carry at least one inclusion statement.
func (c ParsedCriteria) IsScoreable() bool {
	return len(c.Inclusion) > 0
}

// Trial is a clinical trial row. OverallStatus is empty when unknown.
type Trial struct {
	NCTID         string `json:"nct_id"`
	BriefTitle    string `json:"brief_title"`
	Criteria      string `json:"criteria"`
	OverallStatus string `json:"overall_status,omitempty"`
}

// MatchResult is the score of one patient against one trial.
type MatchResult struct {
	NCTID string  `json:"nct_id"`
	Title string  `json:"title"`
	Score float64 `json:"score"` // 0-100, rounded to 2 decimals
}

// MatchRecord is one persisted matching run for a patient.
// Records are append-only; Trials is sorted by descending score.
type MatchRecord struct {
	Id        ID            `json:"id"`
	PatientID string        `json:"patient_id"`
	Mode      MatchMode     `json:"mode"`
	CreatedAt time.Time     `json:"created_at"`
	Trials    []MatchResult `json:"trials"`
}
