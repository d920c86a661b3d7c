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

import "errors"

// Matching outcome errors
var (
	// ErrPatientNotFound indicates the patient is unknown or has no profile.
	ErrPatientNotFound = errors.New("patient not found")

	// ErrNoTrialsAvailable indicates no trial source produced a candidate set.
	ErrNoTrialsAvailable = errors.New("no trials available")

	// ErrExternalService indicates an embedding or completion call failed.
	ErrExternalService = errors.New("external service failure")
)

// Domain validation errors
var (
	// ErrInvalidPatient indicates a PatientRecord failed validation.
	ErrInvalidPatient = errors.New("invalid patient record")

	// ErrInvalidTrial indicates a Trial failed validation.
	ErrInvalidTrial = errors.New("invalid trial")

	// ErrInvalidMatchRecord indicates a MatchRecord failed validation.
	ErrInvalidMatchRecord = errors.New("invalid match record")

	// ErrInvalidMatchMode indicates an unknown MatchMode value.
	ErrInvalidMatchMode = errors.New("invalid match mode")

	// ErrEmptyPatientID indicates the PatientID field is empty.
	ErrEmptyPatientID = errors.New("patient id cannot be empty")

	// ErrEmptyNCTID indicates the NCTID field is empty.
	ErrEmptyNCTID = errors.New("nct id cannot be empty")

	// ErrEmptyBriefTitle indicates the BriefTitle field is empty.
	ErrEmptyBriefTitle = errors.New("brief title cannot be empty")

	// ErrEmptyCriteria indicates the Criteria field is empty.
	ErrEmptyCriteria = errors.New("criteria cannot be empty")

	// ErrScoreOutOfRange indicates a match score outside [0, 100].
	ErrScoreOutOfRange = errors.New("score must be between 0 and 100")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")
)
