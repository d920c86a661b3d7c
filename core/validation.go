// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"time"
)

// ValidatePatientRecord validates a PatientRecord before it is stored.
//
// Validation rules:
//   - PatientID must not be blank
//   - CreatedAt must not be in the future
//
// NOT validated:
//   - Profile (nil is stored and treated as "not found" by matching)
func ValidatePatientRecord(record *PatientRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidPatient)
	}

	if strings.TrimSpace(record.PatientID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPatient, ErrEmptyPatientID)
	}

	if !IsValidTimestamp(record.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidPatient, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateTrial validates a Trial according to domain rules.
//
// Validation rules:
//   - NCTID, BriefTitle and Criteria must not be blank
//
// NOT validated:
//   - OverallStatus (optional)
func ValidateTrial(trial *Trial) error {
	if trial == nil {
		return fmt.Errorf("%w: trial is nil", ErrInvalidTrial)
	}

	if strings.TrimSpace(trial.NCTID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTrial, ErrEmptyNCTID)
	}

	if strings.TrimSpace(trial.BriefTitle) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTrial, ErrEmptyBriefTitle)
	}

	if strings.TrimSpace(trial.Criteria) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTrial, ErrEmptyCriteria)
	}

	return nil
}

// ValidateMatchRecord validates a MatchRecord before it is appended to the match log.
func ValidateMatchRecord(record *MatchRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidMatchRecord)
	}

	if strings.TrimSpace(record.PatientID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMatchRecord, ErrEmptyPatientID)
	}

	if err := ValidateMatchMode(record.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMatchRecord, err)
	}

	for _, result := range record.Trials {
		if result.NCTID == "" {
			return fmt.Errorf("%w: %w", ErrInvalidMatchRecord, ErrEmptyNCTID)
		}
		if result.Score < 0 || result.Score > 100 {
			return fmt.Errorf("%w: %w: %s scored %v", ErrInvalidMatchRecord, ErrScoreOutOfRange, result.NCTID, result.Score)
		}
	}

	return nil
}

// ValidateMatchMode validates that a MatchMode has a known value.
func ValidateMatchMode(mode MatchMode) error {
	if mode != MatchModeDemo && mode != MatchModeRandom {
		return fmt.Errorf("%w: %q", ErrInvalidMatchMode, string(mode))
	}
	return nil
}

// ParseMatchMode converts user input into a MatchMode. Empty input selects demo mode.
func ParseMatchMode(s string) (MatchMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return MatchModeDemo, nil
	}
	mode := MatchMode(s)
	if err := ValidateMatchMode(mode); err != nil {
		return "", err
	}
	return mode, nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
